package event

// Order is a subscriber's priority. Lower orders run first. Any int is valid; the named orders leave room in between.
type Order int

const (
	Pre        Order = -400
	AfterPre   Order = -300
	First      Order = -200
	Early      Order = -100
	Normal     Order = 0
	Late       Order = 100
	Last       Order = 200
	BeforePost Order = 300
	Post       Order = 400
)

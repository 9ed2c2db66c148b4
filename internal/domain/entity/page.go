package entity

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// ElementHandle is a driver-owned reference to a located element. Handles may
// go stale after navigation or re-render; Locator allows re-resolving.
type ElementHandle interface {
	Locator() Locator
}

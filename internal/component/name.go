package component

// Name is a human-readable label used by scene files and scripts.
type Name struct {
	Value string
}

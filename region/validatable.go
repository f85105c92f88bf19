package region

// Validatable is implemented by anything DebugVerify can act upon.
type Validatable interface {
	Verify() error
}

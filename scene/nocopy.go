package scene

// noCopy is embedded into types that hold internal indices and must
// only be used by pointer. "go vet" reports copies of it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

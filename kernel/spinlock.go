package kernel

// Spinlock is the multi-core seam named by the original design for a
// future SMP core. On this single-core simulation there is never
// contention a spin could resolve that the big kernel lock hasn't
// already, so Lock/Unlock compile to nothing observable; the type stays
// so call sites written against it don't need to change when a real
// multi-core port arrives.
type Spinlock struct{}

func (*Spinlock) Lock()   {}
func (*Spinlock) Unlock() {}

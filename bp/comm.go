package bp

import "fmt"

// Comm is the process-group context a file is opened in: the set of
// cooperating processes that each read their own partition. It is passed
// through to the file handle and never validated against the file.
type Comm interface {
	// ID names the group, e.g. "world".
	ID() string
	// Rank is this process's 0-based index within the group.
	Rank() int
	// Size is the number of processes in the group.
	Size() int
}

type localComm struct {
	id   string
	rank int
	size int
}

// World returns the single-process group.
func World() Comm {
	return localComm{id: "world", rank: 0, size: 1}
}

// NewComm describes process rank of a size-process group called id.
func NewComm(id string, rank, size int) Comm {
	return localComm{id: id, rank: rank, size: size}
}

func (c localComm) ID() string { return c.id }
func (c localComm) Rank() int  { return c.rank }
func (c localComm) Size() int  { return c.size }

func (c localComm) String() string {
	return fmt.Sprintf("%s[%d/%d]", c.id, c.rank, c.size)
}

package child

const ProtocolVersion = 1

const (
	Op_Call uint32 = iota + 1
	Op_Quit
)

const (
	Status_OK uint32 = iota
	Status_Fault
	Status_Missing
)

// Hello is the first frame a child writes after it starts.
type Hello struct {
	Version uint32
	PID     int
	Symbols []string
}

type Request struct {
	Op       uint32
	Name     string
	Char     uint8
	HasState bool
	State    []byte
}

type Response struct {
	Status uint32
	Bool   bool
	State  []byte
	Kind   int32
	Code   int32
	Addr   uint64
	Reason string
	Stack  string
}

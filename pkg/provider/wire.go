package provider

// Wire messages for the msgpack IPC between the engine and an
// out-of-process candidate source. Requests stream over the child's
// stdin, responses over its stdout, one msgpack value each. Field
// names are kept short: completion traffic is per-keystroke.

// WireRequest asks for a candidate batch at a field snapshot.
type WireRequest struct {
	ID     string `msgpack:"id"`
	Text   string `msgpack:"t"`
	Cursor int    `msgpack:"c"`
}

// WireItem is one candidate with optional affixation.
type WireItem struct {
	Text       string `msgpack:"w"`
	Prefix     string `msgpack:"p,omitempty"`
	Suffix     string `msgpack:"s,omitempty"`
	Deprecated bool   `msgpack:"d,omitempty"`
}

// WireResponse is a candidate batch. A non-empty Error means the
// request failed and the other fields are meaningless.
type WireResponse struct {
	ID        string     `msgpack:"id"`
	Base      int        `msgpack:"b"`
	Items     []WireItem `msgpack:"i"`
	Category  string     `msgpack:"cat,omitempty"`
	TimeTaken int64      `msgpack:"tt,omitempty"`
	Error     string     `msgpack:"e,omitempty"`
}

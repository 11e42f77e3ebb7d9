package upload

// Blob is an in-memory binary payload selected by the user. Release, when
// set, revokes any locally created preview handle for the blob; the client
// invokes it when a task is cancelled.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
	Release     func()
}

// Size returns the payload size in bytes.
func (b Blob) Size() int64 { return int64(len(b.Data)) }

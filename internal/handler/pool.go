package handler

import (
	"bytes"
	"sync"
)

// Typical snapshot and event-list responses fit well under this.
const responseBufferSize = 512

// responseBuffers recycles JSON encoding buffers across requests.
var responseBuffers = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, responseBufferSize))
	},
}

func getBuffer() *bytes.Buffer {
	return responseBuffers.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	responseBuffers.Put(buf)
}

// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "sync"

// bufferPool recycles *buffer values between lexer invocations. A PDF
// document can open thousands of streams and object bodies over its
// lifetime; pooling the scratch buffer avoids an allocation per object
// without requiring any of the callers below to manage lifetime themselves.
var bufferPool = sync.Pool{
	New: func() interface{} { return &buffer{} },
}

// GetPDFBuffer returns a *buffer ready for use, either freshly allocated or
// recycled from a prior PutPDFBuffer call. The caller must still set r and
// offset (newBuffer does this).
func GetPDFBuffer() *buffer {
	return bufferPool.Get().(*buffer)
}

// PutPDFBuffer returns b to the pool after clearing its state. b and any
// tokens previously read from it must not be used afterwards.
func PutPDFBuffer(b *buffer) {
	if b == nil {
		return
	}
	*b = buffer{
		buf:    b.buf[:0],
		tmp:    b.tmp[:0],
		unread: b.unread[:0],
	}
	bufferPool.Put(b)
}

// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"hash/fnv"
	"sync"
)

// dataKey hashes raw font-program bytes into a cache key. Embedded font
// programs are shared by every glyph drawn with that font, so parsing them
// once per distinct byte string (rather than once per Font) is worth the
// hash cost.
func dataKey(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// CFFFontCache caches parsed *CFFFont values and decoded CharString command
// streams, keyed by the hash of the font program / CharString bytes.
type CFFFontCache struct {
	mu        sync.RWMutex
	fonts     map[uint64]*CFFFont
	decodings map[uint64][]interface{}
}

func newCFFFontCache() *CFFFontCache {
	return &CFFFontCache{
		fonts:     make(map[uint64]*CFFFont),
		decodings: make(map[uint64][]interface{}),
	}
}

func (c *CFFFontCache) GetFont(data []byte) (*CFFFont, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fonts[dataKey(data)]
	return f, ok
}

func (c *CFFFontCache) PutFont(data []byte, f *CFFFont) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fonts[dataKey(data)] = f
}

func (c *CFFFontCache) GetDecoding(data []byte) ([]interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.decodings[dataKey(data)]
	return d, ok
}

func (c *CFFFontCache) PutDecoding(data []byte, commands []interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decodings[dataKey(data)] = commands
}

var (
	globalCFFCache     *CFFFontCache
	globalCFFCacheOnce sync.Once
)

// GetGlobalCFFCache returns the process-wide CFF font/decoding cache.
func GetGlobalCFFCache() *CFFFontCache {
	globalCFFCacheOnce.Do(func() { globalCFFCache = newCFFFontCache() })
	return globalCFFCache
}

// CFFCharStringPool recycles the scratch slices used while decoding a
// CharString (operand stack, command list) across glyphs.
type CFFCharStringPool struct {
	stacks   sync.Pool
	commands sync.Pool
}

func newCFFCharStringPool() *CFFCharStringPool {
	return &CFFCharStringPool{
		stacks:   sync.Pool{New: func() interface{} { return make([]float64, 0, 48) }},
		commands: sync.Pool{New: func() interface{} { return make([]interface{}, 0, 64) }},
	}
}

func (p *CFFCharStringPool) GetStack() []float64 {
	return p.stacks.Get().([]float64)[:0]
}

func (p *CFFCharStringPool) PutStack(s []float64) {
	p.stacks.Put(s[:0])
}

func (p *CFFCharStringPool) GetCommandSlice() []interface{} {
	return p.commands.Get().([]interface{})[:0]
}

func (p *CFFCharStringPool) PutCommandSlice(s []interface{}) {
	p.commands.Put(s[:0])
}

var (
	globalCFFPool     *CFFCharStringPool
	globalCFFPoolOnce sync.Once
)

// GetGlobalCFFPool returns the process-wide CharString decoding scratch pool.
func GetGlobalCFFPool() *CFFCharStringPool {
	globalCFFPoolOnce.Do(func() { globalCFFPool = newCFFCharStringPool() })
	return globalCFFPool
}

// Type1FontCache caches parsed *Type1Font values keyed by a hash of the
// (decrypted-or-not) font program bytes handed to NewType1Font.
type Type1FontCache struct {
	mu    sync.RWMutex
	fonts map[uint64]*Type1Font
}

func newType1FontCache() *Type1FontCache {
	return &Type1FontCache{fonts: make(map[uint64]*Type1Font)}
}

func (c *Type1FontCache) GetFont(data []byte) (*Type1Font, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fonts[dataKey(data)]
	return f, ok
}

func (c *Type1FontCache) PutFont(data []byte, f *Type1Font) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fonts[dataKey(data)] = f
}

var (
	globalType1Cache     *Type1FontCache
	globalType1CacheOnce sync.Once
)

// GetGlobalType1Cache returns the process-wide Type1 font cache.
func GetGlobalType1Cache() *Type1FontCache {
	globalType1CacheOnce.Do(func() { globalType1Cache = newType1FontCache() })
	return globalType1Cache
}

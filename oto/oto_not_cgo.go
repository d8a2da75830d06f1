//go:build !cgo

package oto

import (
	"errors"

	"github.com/goodmultitracks/multitrack"
)

// OtoContext is never created without cgo; NewContext always fails.
type OtoContext struct{}

var errNoCgo = errors.New("audio output needs a build with cgo enabled")

func NewContext() (*OtoContext, error) {
	return nil, errNoCgo
}

func (c *OtoContext) SampleRate() int              { return 0 }
func (c *OtoContext) Output() multitrack.AudioSink { return nil }
func (c *OtoContext) Close() error                 { return nil }

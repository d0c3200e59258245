package middleware

import (
	"github.com/tansive/spore/pkg/spore/request"
	"github.com/tansive/spore/pkg/spore/transport"
)

// AddHeader sets a fixed header on every request. Re-running it replaces the
// previous value instead of appending.
type AddHeader struct {
	Header string `mapstructure:"header" validate:"required,headerName"`
	Value  string `mapstructure:"value"`
}

func NewAddHeader(name, value string) *AddHeader {
	return &AddHeader{Header: name, Value: value}
}

func (a *AddHeader) Name() string {
	return "AddHeader(" + a.Header + ")"
}

func (a *AddHeader) Apply(_ *request.Context, h transport.HeaderWriter) error {
	h.SetHeader(a.Header, a.Value)
	return nil
}

func (*AddHeader) sealed() {}

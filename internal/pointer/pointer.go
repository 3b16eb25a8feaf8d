// Package pointer implements the stream-pointer convention: minting a
// fresh `<scheme>://<id>.<kind>` URL for a local stream endpoint, and
// parsing one back into its id/kind components on the receiving side.
package pointer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Kind is the pointer's `readable`/`writable` suffix, always expressed
// from the minting side's point of view.
type Kind string

const (
	Readable Kind = "readable"
	Writable Kind = "writable"
)

// DefaultScheme is the reference scheme used when a deployment does not
// configure its own. The scheme is fixed per deployment.
const DefaultScheme = "mascara"

// Pointer is a parsed stream-pointer URL.
type Pointer struct {
	Scheme string
	ID     string
	Kind   Kind
}

// String renders the pointer back to its wire form, `scheme://id.kind`.
func (p Pointer) String() string {
	return fmt.Sprintf("%s://%s.%s", p.Scheme, p.ID, p.Kind)
}

// Mint generates a fresh, connection-unique pointer of the given kind
// under scheme. The id is a UUID-class opaque token, generated with
// google/uuid.
func Mint(scheme string, kind Kind) Pointer {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return Pointer{Scheme: scheme, ID: uuid.NewString(), Kind: kind}
}

// Parse recognizes a string as a stream-pointer URL and splits its host
// component on "." into id and kind. It returns ok=false for any string
// that isn't shaped like scheme://id.kind with kind in {readable,
// writable} — including ordinary application notification method names,
// which must fall through to the "unhandled" path rather than be
// mistaken for a stream frame; final disambiguation is by registry
// lookup, not by this shape check alone.
func Parse(s string) (Pointer, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Pointer{}, false
	}

	dot := strings.LastIndex(u.Host, ".")
	if dot < 0 || dot == len(u.Host)-1 {
		return Pointer{}, false
	}

	id := u.Host[:dot]
	kindStr := u.Host[dot+1:]
	if id == "" {
		return Pointer{}, false
	}

	var kind Kind
	switch kindStr {
	case string(Readable):
		kind = Readable
	case string(Writable):
		kind = Writable
	default:
		return Pointer{}, false
	}

	return Pointer{Scheme: u.Scheme, ID: id, Kind: kind}, true
}

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/pin"
)

// SercomPad returns the function name of pad n of SERCOM s, e.g.
// "SERCOM7_PAD2".
func SercomPad(s, n int) pin.Func {
	return pin.Func("SERCOM" + strconv.Itoa(s) + "_PAD" + strconv.Itoa(n))
}

// TCCOutput returns the function name of waveform output n of TCC t, e.g.
// "TCC0_WO4".
func TCCOutput(t, n int) pin.Func {
	return pin.Func("TCC" + strconv.Itoa(t) + "_WO" + strconv.Itoa(n))
}

// padRoute is a pin resolved against a controller: the function group to
// select and the index the pin has on the controller.
type padRoute struct {
	p   *Pin
	mux Mux
	pad int
}

// route finds the function of p whose name starts with prefix and returns the
// numeric suffix as the pad index.
func route(p *Pin, prefix, what string) (padRoute, error) {
	if p == nil {
		return padRoute{}, fmt.Errorf("%w: %s pin is missing", ErrPad, what)
	}
	l, err := p.line()
	if err != nil {
		return padRoute{}, err
	}
	for m := MuxA; m <= MuxN; m++ {
		f, ok := l.funcs[m]
		if !ok || !strings.HasPrefix(string(f), prefix) {
			continue
		}
		n, err := strconv.Atoi(string(f)[len(prefix):])
		if err != nil {
			continue
		}
		return padRoute{p: p, mux: m, pad: n}, nil
	}
	return padRoute{}, fmt.Errorf("%w: %s cannot be %s (no %s function)", ErrPad, p, what, strings.TrimSuffix(prefix, "_"))
}

// funcRoute resolves p against the exact function f.
func funcRoute(p *Pin, f pin.Func) (padRoute, error) {
	if p == nil {
		return padRoute{}, fmt.Errorf("%w: %s pin is missing", ErrPad, f)
	}
	if _, err := p.line(); err != nil {
		return padRoute{}, err
	}
	m, ok := p.mux(f)
	if !ok {
		return padRoute{}, fmt.Errorf("%w: %s does not support %s", ErrPad, p, f)
	}
	return padRoute{p: p, mux: m}, nil
}

func sercomRoute(p *Pin, s *Sercom, what string) (padRoute, error) {
	return route(p, "SERCOM"+strconv.Itoa(s.n)+"_PAD", what)
}

// distinct reports an error when two routes share a pad.
func distinct(routes ...padRoute) error {
	for i := range routes {
		for j := i + 1; j < len(routes); j++ {
			if routes[i].p != nil && routes[j].p != nil && routes[i].pad == routes[j].pad {
				return fmt.Errorf("%w: %s and %s both use PAD%d", ErrPad, routes[i].p, routes[j].p, routes[i].pad)
			}
		}
	}
	return nil
}

// commit moves every routed pin into its alternate function. Routes must have
// been validated; handles cannot go stale in between since the caller owns
// them.
func commit(routes ...padRoute) ([]*Alt, error) {
	out := make([]*Alt, len(routes))
	for i, r := range routes {
		if r.p == nil {
			continue
		}
		a, err := r.p.intoMux(r.mux)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

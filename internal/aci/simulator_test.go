// SPDX-License-Identifier: GPL-3.0-or-later

package aci

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

// simulator is a minimal in-process ACI server used to drive [*Client]
// tests without a real controller. It understands just enough of the
// protocol to exercise login, introspection, and filtered enumeration.
type simulator struct {
	validUser, validPass string
	requireAuth          bool

	mu       sync.Mutex
	loggedIn bool
	filters  map[string][]string // handle -> remaining object XML bodies

	nextHandle int
}

func newSimulator(user, pass string) *simulator {
	return &simulator{validUser: user, validPass: pass, filters: map[string][]string{}}
}

// newSimulatorRequireAuth returns a simulator that answers every request
// with the auth-required marker until a successful Login.
func newSimulatorRequireAuth(user, pass string) *simulator {
	s := newSimulator(user, pass)
	s.requireAuth = true
	return s
}

// authGate returns a non-nil auth-required response frame for iface/method
// when the simulator requires auth and no successful login has occurred.
func (s *simulator) authGate(iface, method string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requireAuth && !s.loggedIn {
		return []byte(fmt.Sprintf(`<%s><%s><return>auth-required</return></%s></%s>`, iface, method, method, iface))
	}
	return nil
}

// serve runs the simulator loop over conn until the connection closes or
// an unrecoverable framing error occurs. Call it in its own goroutine.
func (s *simulator) serve(conn net.Conn) {
	defer conn.Close()
	fr := NewFrameReader(conn)
	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			return
		}
		resp := s.handle(frame)
		if resp == nil {
			return
		}
		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}

func (s *simulator) handle(frame []byte) []byte {
	text := string(frame)
	switch {
	case strings.Contains(text, "<Login>"):
		return s.handleLogin(text)
	case strings.Contains(text, "<GetVersion>"):
		if resp := s.authGate("IIntrospection", "GetVersion"); resp != nil {
			return resp
		}
		return []byte(`<IIntrospection><GetVersion><return><Kernel>1.0</Kernel><Rootfs>2.0</Rootfs><App>3.0</App></return></GetVersion></IIntrospection>`)
	case strings.Contains(text, "<OpenFilter>"):
		if resp := s.authGate("IConfiguration", "OpenFilter"); resp != nil {
			return resp
		}
		return s.handleOpenFilter(text)
	case strings.Contains(text, "<GetFilterResults>"):
		if resp := s.authGate("IConfiguration", "GetFilterResults"); resp != nil {
			return resp
		}
		return s.handleGetFilterResults(text)
	case strings.Contains(text, "<CloseFilter>"):
		return []byte(`<IConfiguration><CloseFilter><return>true</return></CloseFilter></IConfiguration>`)
	case strings.Contains(text, "<GetObject>"):
		if resp := s.authGate("IConfiguration", "GetObject"); resp != nil {
			return resp
		}
		return s.handleGetObject(text)
	}
	return nil
}

func extractParam(text, name string) string {
	open, close := "<"+name+">", "</"+name+">"
	i := strings.Index(text, open)
	if i < 0 {
		return ""
	}
	i += len(open)
	j := strings.Index(text[i:], close)
	if j < 0 {
		return ""
	}
	return text[i : i+j]
}

func (s *simulator) handleLogin(text string) []byte {
	user := extractParam(text, "User")
	pass := extractParam(text, "Password")
	ok := user == s.validUser && pass == s.validPass
	s.mu.Lock()
	if ok {
		s.loggedIn = true
	}
	s.mu.Unlock()
	return []byte(fmt.Sprintf(`<ILogin><Login><return>%v</return></Login></ILogin>`, ok))
}

// seedButtons registers a filter's worth of n buttons, to be drained by
// subsequent GetFilterResults calls.
func (s *simulator) seedButtons(handle string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	objs := make([]string, n)
	for i := range objs {
		vid := 1000 + i
		objs[i] = fmt.Sprintf(`<Object VID="%d" type="Button"><Name>Button%d</Name></Object>`, vid, i)
	}
	s.filters[handle] = objs
}

func (s *simulator) handleOpenFilter(text string) []byte {
	s.mu.Lock()
	s.nextHandle++
	handle := fmt.Sprintf("handle-%d", s.nextHandle)
	if _, exists := s.filters[handle]; !exists {
		s.filters[handle] = nil
	}
	s.mu.Unlock()
	return []byte(fmt.Sprintf(`<IConfiguration><OpenFilter><return>%s</return></OpenFilter></IConfiguration>`, handle))
}

func (s *simulator) handleGetFilterResults(text string) []byte {
	handle := extractParam(text, "Handle")
	count, _ := strconv.Atoi(extractParam(text, "Count"))

	s.mu.Lock()
	remaining := s.filters[handle]
	n := count
	if n > len(remaining) {
		n = len(remaining)
	}
	page := remaining[:n]
	s.filters[handle] = remaining[n:]
	s.mu.Unlock()

	var body strings.Builder
	body.WriteString(`<IConfiguration><GetFilterResults><return>`)
	for _, obj := range page {
		body.WriteString(obj)
	}
	body.WriteString(`</return></GetFilterResults></IConfiguration>`)
	return []byte(body.String())
}

func (s *simulator) handleGetObject(text string) []byte {
	var body strings.Builder
	body.WriteString(`<IConfiguration><GetObject><return>`)
	// Single canned object for VID 118 used by client tests.
	body.WriteString(`<Object VID="118" type="Load"><Name>Kitchen</Name></Object>`)
	body.WriteString(`</return></GetObject></IConfiguration>`)
	return []byte(body.String())
}

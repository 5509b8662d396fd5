// SPDX-License-Identifier: GPL-3.0-or-later

package vantage

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/go-vantage/vantage/internal/aci"
)

// aciSimulator is a minimal in-process ACI config-channel server, enough
// to drive a [Session.Open] end to end: login, then a two-Load
// enumeration.
type aciSimulator struct {
	listener net.Listener
	user, pass string

	mu         sync.Mutex
	filters    map[string][]string
	nextHandle int
}

func newACISimulator(user, pass string) (*aciSimulator, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &aciSimulator{listener: ln, user: user, pass: pass, filters: map[string][]string{
		"pending": {
			`<Object VID="118" type="Load"><Name>Kitchen</Name></Object>`,
			`<Object VID="119" type="Load"><Name>Study</Name></Object>`,
		},
	}}
	go s.acceptLoop()
	return s, nil
}

func (s *aciSimulator) addr() string { return s.listener.Addr().String() }
func (s *aciSimulator) close()       { s.listener.Close() }

func (s *aciSimulator) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *aciSimulator) serve(conn net.Conn) {
	defer conn.Close()
	fr := aci.NewFrameReader(conn)
	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			return
		}
		resp := s.handle(string(frame))
		if resp == nil {
			return
		}
		if err := aci.WriteFrame(conn, resp); err != nil {
			return
		}
	}
}

func extractACIParam(text, name string) string {
	open, closeTag := "<"+name+">", "</"+name+">"
	i := strings.Index(text, open)
	if i < 0 {
		return ""
	}
	i += len(open)
	j := strings.Index(text[i:], closeTag)
	if j < 0 {
		return ""
	}
	return text[i : i+j]
}

func (s *aciSimulator) handle(text string) []byte {
	switch {
	case strings.Contains(text, "<Login>"):
		ok := extractACIParam(text, "User") == s.user && extractACIParam(text, "Password") == s.pass
		return []byte(fmt.Sprintf(`<ILogin><Login><return>%v</return></Login></ILogin>`, ok))
	case strings.Contains(text, "<OpenFilter>"):
		s.mu.Lock()
		s.nextHandle++
		handle := fmt.Sprintf("handle-%d", s.nextHandle)
		s.filters[handle] = s.filters["pending"]
		delete(s.filters, "pending")
		s.mu.Unlock()
		return []byte(fmt.Sprintf(`<IConfiguration><OpenFilter><return>%s</return></OpenFilter></IConfiguration>`, handle))
	case strings.Contains(text, "<GetFilterResults>"):
		handle := extractACIParam(text, "Handle")
		count, _ := strconv.Atoi(extractACIParam(text, "Count"))
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
	case strings.Contains(text, "<CloseFilter>"):
		return []byte(`<IConfiguration><CloseFilter><return>true</return></CloseFilter></IConfiguration>`)
	}
	return nil
}

// hcSimulator is a minimal in-process Host Command server, enough to
// answer LOGIN and per-VID Load.GetLevel INVOKE requests.
type hcSimulator struct {
	listener   net.Listener
	user, pass string
	levels     map[string]string // vid -> wire-format percent

	mu    sync.Mutex
	conns []net.Conn
}

func newHCSimulator(user, pass string, levels map[string]string) (*hcSimulator, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &hcSimulator{listener: ln, user: user, pass: pass, levels: levels}
	go s.acceptLoop()
	return s, nil
}

func (s *hcSimulator) addr() string { return s.listener.Addr().String() }
func (s *hcSimulator) close()       { s.listener.Close() }

// dropConnections forcibly closes every connection currently being served,
// simulating a severed command socket.
func (s *hcSimulator) dropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
}

func (s *hcSimulator) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go s.serve(conn)
	}
}

func (s *hcSimulator) serve(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "LOGIN":
			ok := len(fields) == 3 && fields[1] == s.user && fields[2] == s.pass
			if ok {
				conn.Write([]byte("R:LOGIN Success\r\n"))
			} else {
				conn.Write([]byte("R:LOGIN Failure\r\n"))
			}
		case "INVOKE":
			if len(fields) < 3 {
				continue
			}
			vid, method := fields[1], fields[2]
			if method == "Load.GetLevel" {
				level := s.levels[vid]
				if level == "" {
					level = "0.000"
				}
				fmt.Fprintf(conn, "R:INVOKE %s Load.GetLevel %s\r\n", vid, level)
			} else {
				fmt.Fprintf(conn, "R:INVOKE %s %s OK\r\n", vid, method)
			}
		case "ADDSTATUS", "STATUS", "ELENABLE", "ELLOG":
			fmt.Fprintf(conn, "R:%s OK\r\n", fields[0])
		}
	}
}

// SPDX-License-Identifier: GPL-3.0-or-later

package controllers

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/go-vantage/vantage/internal/aci"
)

// aciSimulator is a minimal in-process ACI config-channel server, just
// enough to drive controller Initialize tests over a filtered Load
// enumeration.
type aciSimulator struct {
	mu         sync.Mutex
	filters    map[string][]string
	nextHandle int
}

func newACISimulator() *aciSimulator {
	return &aciSimulator{filters: map[string][]string{}}
}

func (s *aciSimulator) seedLoads(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	objs := make([]string, n)
	for i := range objs {
		vid := 100 + i
		objs[i] = fmt.Sprintf(`<Object VID="%d" type="Load"><Name>Load%d</Name></Object>`, vid, i)
	}
	s.filters["pending"] = objs
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

func extractParam(text, name string) string {
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
	case strings.Contains(text, "<OpenFilter>"):
		s.mu.Lock()
		s.nextHandle++
		handle := fmt.Sprintf("handle-%d", s.nextHandle)
		s.filters[handle] = s.filters["pending"]
		delete(s.filters, "pending")
		s.mu.Unlock()
		return []byte(fmt.Sprintf(`<IConfiguration><OpenFilter><return>%s</return></OpenFilter></IConfiguration>`, handle))
	case strings.Contains(text, "<GetFilterResults>"):
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
	case strings.Contains(text, "<CloseFilter>"):
		return []byte(`<IConfiguration><CloseFilter><return>true</return></CloseFilter></IConfiguration>`)
	}
	return nil
}

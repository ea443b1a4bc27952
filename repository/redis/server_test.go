package redis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// memRedis speaks enough RESP2 for the commands the repositories issue,
// including WATCH/MULTI/EXEC with optimistic locking.
type memRedis struct {
	ln net.Listener

	mu       sync.Mutex
	data     map[string]string
	ttls     map[string]time.Duration
	versions map[string]uint64
	// beforeExec runs with mu held just before a transaction is checked.
	beforeExec func(s *memRedis)
}

func startMemRedis(t *testing.T) (*memRedis, *redislib.Client) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &memRedis{
		ln:       ln,
		data:     map[string]string{},
		ttls:     map[string]time.Duration{},
		versions: map[string]uint64{},
	}
	go s.serve()

	client := redislib.NewClient(&redislib.Options{
		Addr:            ln.Addr().String(),
		Protocol:        2,
		DisableIdentity: true,
	})
	t.Cleanup(func() {
		_ = client.Close()
		_ = ln.Close()
	})
	return s, client
}

func (s *memRedis) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memRedis) ttl(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttls[key]
}

func (s *memRedis) put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(key, value, 0)
}

func (s *memRedis) write(key, value string, ttl time.Duration) {
	s.data[key] = value
	s.ttls[key] = ttl
	s.versions[key]++
}

func (s *memRedis) remove(key string) bool {
	_, ok := s.data[key]
	delete(s.data, key)
	delete(s.ttls, key)
	s.versions[key]++
	return ok
}

func (s *memRedis) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

type connState struct {
	watched map[string]uint64
	multi   bool
	queued  [][]string
}

func (s *memRedis) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	st := &connState{watched: map[string]uint64{}}
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if _, err := io.WriteString(conn, s.dispatch(st, args)); err != nil {
			return
		}
	}
}

func (s *memRedis) dispatch(st *connState, args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.ToUpper(args[0])
	switch name {
	case "MULTI":
		st.multi = true
		st.queued = nil
		return "+OK\r\n"
	case "DISCARD":
		st.multi = false
		st.queued = nil
		st.watched = map[string]uint64{}
		return "+OK\r\n"
	case "EXEC":
		return s.exec(st)
	case "WATCH":
		for _, k := range args[1:] {
			st.watched[k] = s.versions[k]
		}
		return "+OK\r\n"
	case "UNWATCH":
		st.watched = map[string]uint64{}
		return "+OK\r\n"
	}
	if st.multi {
		st.queued = append(st.queued, args)
		return "+QUEUED\r\n"
	}
	return s.apply(args)
}

func (s *memRedis) exec(st *connState) string {
	defer func() {
		st.multi = false
		st.queued = nil
		st.watched = map[string]uint64{}
	}()
	if s.beforeExec != nil {
		s.beforeExec(s)
	}
	for k, v := range st.watched {
		if s.versions[k] != v {
			return "*-1\r\n"
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%d\r\n", len(st.queued))
	for _, cmd := range st.queued {
		b.WriteString(s.apply(cmd))
	}
	return b.String()
}

func (s *memRedis) apply(args []string) string {
	switch strings.ToUpper(args[0]) {
	case "PING":
		return "+PONG\r\n"
	case "SELECT":
		return "+OK\r\n"
	case "GET":
		return bulk(s.data, args[1])
	case "SET":
		s.write(args[1], args[2], expiry(args[3:]))
		return "+OK\r\n"
	case "GETEX":
		reply := bulk(s.data, args[1])
		if _, ok := s.data[args[1]]; ok {
			if ttl := expiry(args[2:]); ttl > 0 {
				s.ttls[args[1]] = ttl
			}
		}
		return reply
	case "DEL":
		n := 0
		for _, k := range args[1:] {
			if s.remove(k) {
				n++
			}
		}
		return fmt.Sprintf(":%d\r\n", n)
	case "INCR":
		n, err := strconv.ParseInt(s.data[args[1]], 10, 64)
		if err != nil && s.data[args[1]] != "" {
			return "-ERR value is not an integer or out of range\r\n"
		}
		n++
		s.write(args[1], strconv.FormatInt(n, 10), s.ttls[args[1]])
		return fmt.Sprintf(":%d\r\n", n)
	default:
		return fmt.Sprintf("-ERR unknown command '%s'\r\n", args[0])
	}
}

func bulk(data map[string]string, key string) string {
	v, ok := data[key]
	if !ok {
		return "$-1\r\n"
	}
	return fmt.Sprintf("$%d\r\n%s\r\n", len(v), v)
}

func expiry(opts []string) time.Duration {
	for i := 0; i+1 < len(opts); i++ {
		n, err := strconv.ParseInt(opts[i+1], 10, 64)
		if err != nil {
			continue
		}
		switch strings.ToUpper(opts[i]) {
		case "EX":
			return time.Duration(n) * time.Second
		case "PX":
			return time.Duration(n) * time.Millisecond
		}
	}
	return 0
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[0] != '*' {
		return nil, errors.New("expected array")
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 1 {
		return nil, errors.New("bad array length")
	}
	args := make([]string, n)
	for i := range args {
		header, err := readLine(r)
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimPrefix(header, "$"))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args[i] = string(buf[:size])
	}
	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

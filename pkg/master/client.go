package master

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	serverRecordLen     = 7 // IPv4, port, separator
	getStatusBufferSize = 1 << 14
	recordSep           = byte('\\')
)

var (
	queryPrefix    = []byte{0xff, 0xff, 0xff, 0xff}
	respGetServers = append([]byte(nil), append(queryPrefix, []byte("getserversResponse\\")...)...)
	queryGetStatus = append([]byte(nil), append(queryPrefix, []byte("getstatus")...)...)
	respGetStatus  = append([]byte(nil), append(queryPrefix, []byte("statusResponse\n\\")...)...)
)

// Config holds master-server client settings.
type Config struct {
	Host       string
	Port       int
	Protocol   int
	MaxServers int
	Timeout    time.Duration // per UDP exchange
}

// Client queries the master server for live game servers and each game
// server for its current status.
type Client struct {
	config Config
	logger *slog.Logger
}

// NewClient creates a master-server client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		config: cfg,
		logger: logger.With("component", "master"),
	}
}

func (c *Client) masterAddr() string {
	return net.JoinHostPort(c.config.Host, fmt.Sprint(c.config.Port))
}

// FetchServers performs one master query followed by a status query of every
// listed game server, and assembles the results into a sorted snapshot. Game
// servers that fail to answer are skipped; only a failure of the master query
// itself is an error. An empty server list is a valid empty snapshot.
func (c *Client) FetchServers(ctx context.Context) (*Snapshot, error) {
	addrs, err := c.queryAddresses(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Master query complete", "servers", len(addrs))

	records := make([]ServerRecord, len(addrs))
	ok := make([]bool, len(addrs))

	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			rec, err := c.queryStatus(ctx, addr)
			if err != nil {
				c.logger.Debug("Skipping unresponsive game server", "address", addr, "error", err)
				return
			}
			records[i] = rec
			ok[i] = true
		}(i, addr)
	}
	wg.Wait()

	alive := records[:0]
	for i, rec := range records {
		if ok[i] {
			alive = append(alive, rec)
		}
	}

	return NewSnapshot(alive), nil
}

// queryAddresses sends getservers to the master and decodes the address list.
func (c *Client) queryAddresses(ctx context.Context) ([]string, error) {
	addr := c.masterAddr()
	query := append(append([]byte(nil), queryPrefix...),
		[]byte(fmt.Sprintf("getservers %d", c.config.Protocol))...)

	response, _, err := c.exchange(ctx, addr, query,
		len(respGetServers)+serverRecordLen*c.config.MaxServers)
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(response, respGetServers) {
		return nil, malformed(addr, "bad getservers response header")
	}
	payload := response[len(respGetServers):]

	if len(payload)%serverRecordLen != 0 {
		return nil, malformed(addr, "payload size %d is not a multiple of %d",
			len(payload), serverRecordLen)
	}

	addrs := make([]string, 0, len(payload)/serverRecordLen)
	for i := 0; i+serverRecordLen <= len(payload); i += serverRecordLen {
		rec := payload[i : i+serverRecordLen]
		if rec[6] != recordSep {
			return nil, malformed(addr, "unexpected separator byte %q", rec[6])
		}
		host := fmt.Sprintf("%d.%d.%d.%d", rec[0], rec[1], rec[2], rec[3])
		port := int(rec[4])<<8 | int(rec[5])
		addrs = append(addrs, net.JoinHostPort(host, fmt.Sprint(port)))
	}
	return addrs, nil
}

// queryStatus sends getstatus to one game server and parses the reply into a
// record. The round-trip time of the exchange is recorded as the ping.
func (c *Client) queryStatus(ctx context.Context, addr string) (ServerRecord, error) {
	response, rtt, err := c.exchange(ctx, addr, queryGetStatus, getStatusBufferSize)
	if err != nil {
		return ServerRecord{}, err
	}

	if !bytes.HasPrefix(response, respGetStatus) {
		return ServerRecord{}, malformed(addr, "bad getstatus response header")
	}

	// Config string is the first line; player name lines follow.
	body := response[len(respGetStatus):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[:i]
	}

	info, err := parseInfoString(body)
	if err != nil {
		return ServerRecord{}, malformed(addr, "%v", err)
	}

	rec := recordFromInfo(addr, info)
	rec.Ping = rtt
	return rec, nil
}

// exchange performs a single request/response datagram round trip.
func (c *Client) exchange(ctx context.Context, addr string, query []byte, bufSize int) ([]byte, time.Duration, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, 0, classify(addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, 0, classify(addr, err)
	}

	start := time.Now()
	if _, err := conn.Write(query); err != nil {
		return nil, 0, classify(addr, err)
	}

	buf := make([]byte, bufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, 0, classify(addr, err)
	}
	rtt := time.Since(start)

	if n == 0 {
		return nil, 0, malformed(addr, "empty response")
	}
	return buf[:n], rtt, nil
}

// Package owm fetches forecast objects from the OpenWeatherMap API over a
// raw TCP connection. Only the JSON body is read; the HTTP headers are
// skipped by the framer since they contain no '{'.
package owm

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/stuartleeks/home-dash/forecast-ring/stream"
)

const (
	DefaultHost      = "api.openweathermap.org"
	DefaultUserAgent = "forecast-ring/1.0"
	forecastPath     = "/data/2.5/forecast"
)

// Dialer opens the TCP connection; *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Client struct {
	Host      string
	Port      int
	APIKey    string
	City      string
	Units     string
	Count     int
	UserAgent string

	Dialer         Dialer
	ConnectTimeout time.Duration
	PollSlice      time.Duration
	Reader         *stream.Reader

	conn net.Conn
}

func NewClient(host string, port int, apiKey, city string, reader *stream.Reader) *Client {
	return &Client{
		Host:           host,
		Port:           port,
		APIKey:         apiKey,
		City:           city,
		Units:          "metric",
		Count:          2,
		UserAgent:      DefaultUserAgent,
		Dialer:         &net.Dialer{},
		ConnectTimeout: 10 * time.Second,
		PollSlice:      stream.DefaultPollSlice,
		Reader:         reader,
	}
}

// RequestTarget is the path and query sent in the request line.
func (c *Client) RequestTarget() string {
	return fmt.Sprintf("%s?q=%s&APPID=%s&mode=json&units=%s&cnt=%d",
		forecastPath, url.QueryEscape(c.City), url.QueryEscape(c.APIKey), url.QueryEscape(c.Units), c.Count)
}

func (c *Client) address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Client) writeRequest(conn net.Conn) error {
	w := bufio.NewWriter(conn)
	fmt.Fprintf(w, "GET %s HTTP/1.1\r\n", c.RequestTarget())
	fmt.Fprintf(w, "Host: %s\r\n", c.Host)
	fmt.Fprintf(w, "User-Agent: %s\r\n", c.UserAgent)
	fmt.Fprintf(w, "Connection: close\r\n")
	fmt.Fprintf(w, "\r\n")
	return w.Flush()
}

// Fetch sends one forecast request and returns the first complete JSON
// object of the response. Any previous connection is closed first.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	c.Close()

	dialCtx := ctx
	if c.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.ConnectTimeout)
		defer cancel()
	}
	conn, err := c.Dialer.DialContext(dialCtx, "tcp", c.address())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.address(), err)
	}
	c.conn = conn
	defer c.Close()

	if err := c.writeRequest(conn); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	src := stream.NewConnSource(conn, c.PollSlice)
	object, err := c.Reader.ReadObject(ctx, src)
	if err != nil {
		if readErr := src.Err(); readErr != nil {
			return nil, fmt.Errorf("read response: %w (%v)", err, readErr)
		}
		return nil, fmt.Errorf("read response: %w", err)
	}
	return object, nil
}

// Close drops the in-flight connection, if any.
func (c *Client) Close() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

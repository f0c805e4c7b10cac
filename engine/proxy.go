package engine

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/proxy"
)

type dialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

var directDialer = &net.Dialer{Timeout: 10 * time.Second}

// routeThroughProxy sends the transport's traffic through proxyURL.
//
// http.Transport skips DialTLSContext for proxied HTTPS requests, so HTTPS
// targets are never handed to transport.Proxy. They are tunnelled instead
// (CONNECT for http/https proxies, SOCKS5 otherwise) and the Chrome
// handshake runs inside the tunnel. Plain HTTP targets use ordinary
// forward proxying.
func routeThroughProxy(transport *http.Transport, proxyURL *url.URL) error {
	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" {
				return nil, nil
			}
			return proxyURL, nil
		}
		transport.DialTLSContext = chromeTLSDialer(func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialConnectTunnel(ctx, directDialer.DialContext, proxyURL, addr)
		})
		return nil

	case "socks5", "socks5h":
		d, err := proxy.FromURL(proxyURL, directDialer)
		if err != nil {
			return err
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks dialer does not support contexts")
		}
		transport.DialContext = cd.DialContext
		transport.DialTLSContext = chromeTLSDialer(cd.DialContext)
		return nil

	default:
		return fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
}

// dialConnectTunnel opens a CONNECT tunnel to addr through an HTTP proxy.
// The returned connection carries raw bytes to addr.
func dialConnectTunnel(ctx context.Context, dial dialContextFunc, proxyURL *url.URL, addr string) (net.Conn, error) {
	conn, err := dial(ctx, "tcp", proxyAddr(proxyURL))
	if err != nil {
		return nil, err
	}
	if proxyURL.Scheme == "https" {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: proxyURL.Hostname()})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("http_engine: proxy tls handshake: %w", err)
		}
		conn = tlsConn
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if u := proxyURL.User; u != nil {
		pass, _ := u.Password()
		cred := base64.StdEncoding.EncodeToString([]byte(u.Username() + ":" + pass))
		req.Header.Set("Proxy-Authorization", "Basic "+cred)
	}
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("http_engine: write CONNECT: %w", err)
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("http_engine: read CONNECT response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("http_engine: proxy CONNECT %s: %s", addr, resp.Status)
	}
	if br.Buffered() > 0 {
		conn.Close()
		return nil, fmt.Errorf("http_engine: proxy sent data before the tunnel opened")
	}
	return conn, nil
}

func proxyAddr(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

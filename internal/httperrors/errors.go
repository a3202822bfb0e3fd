// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns backend and network failures into messages a user
// can act on.
package httperrors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"bloomi/cli/internal/apiclient"

	"github.com/pterm/pterm"
)

// Kind classifies a request failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindDNS
	KindRefused
	KindTLS
	KindServer
	KindUnauthorized
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindDNS:
		return "dns"
	case KindRefused:
		return "connection_refused"
	case KindTLS:
		return "tls"
	case KindServer:
		return "server"
	case KindUnauthorized:
		return "unauthorized"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Classify inspects err and reports what kind of failure it is.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var se *apiclient.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 401:
			return KindUnauthorized
		case se.StatusCode >= 500:
			return KindServer
		default:
			return KindRejected
		}
	}

	switch {
	case isTimeoutError(err):
		return KindTimeout
	case isDNSError(err):
		return KindDNS
	case isConnectionRefusedError(err):
		return KindRefused
	case isTLSError(err):
		return KindTLS
	}
	return KindUnknown
}

// IsTransient reports whether retrying later may succeed.
func IsTransient(err error) bool {
	switch Classify(err) {
	case KindTimeout, KindDNS, KindRefused, KindServer:
		return true
	}
	return false
}

// Report prints a friendly explanation of err for the given action (for
// example "loading today's meals") and returns err wrapped for the caller.
func Report(err error, action, apiURL string) error {
	if err == nil {
		return nil
	}
	host := ExtractHostFromURL(apiURL)

	switch Classify(err) {
	case KindTimeout:
		showTimeoutError(action)
	case KindDNS:
		showDNSError(action, host)
	case KindRefused:
		showConnectionRefusedError(action, host)
	case KindTLS:
		showTLSError(action)
	case KindServer:
		showServerError(action)
	case KindUnauthorized:
		showUnauthorizedError()
	case KindRejected:
		showRejectedError(action, err)
	default:
		showGenericError(action, host, err.Error())
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func showTimeoutError(action string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", action)
	pterm.Println()
	pterm.Println("The server took too long to respond. Check your connection and try again.")
	pterm.Println()
}

func showDNSError(action, host string) {
	pterm.Printf("🌐 Cannot resolve server address while %s\n", action)
	pterm.Println()
	pterm.Printf("Unable to look up %s. Check your internet connection and the api_url setting.\n", host)
	pterm.Println()
}

func showConnectionRefusedError(action, host string) {
	pterm.Printf("🚫 Connection refused while %s\n", action)
	pterm.Println()
	pterm.Printf("Nothing is accepting connections at %s. Is the Bloomi backend running?\n", host)
	pterm.Println("Set BLOOMI_API_URL or api_url in the config file to point at another server.")
	pterm.Println()
}

func showTLSError(action string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", action)
	pterm.Println()
	pterm.Println("Check your system clock and any proxy that intercepts HTTPS traffic.")
	pterm.Println()
}

func showServerError(action string) {
	pterm.Printf("⚠️  Server error while %s\n", action)
	pterm.Println()
	pterm.Println("The Bloomi server encountered an internal error. Please try again in a few minutes.")
	pterm.Println()
}

func showUnauthorizedError() {
	pterm.Println("🔒 Your session has expired and you have been signed out.")
	pterm.Println("   Run 'bloomi login' to sign in again.")
	pterm.Println()
}

func showRejectedError(action string, err error) {
	var se *apiclient.StatusError
	msg := err.Error()
	if errors.As(err, &se) && se.Message != "" {
		msg = se.Message
	}
	pterm.Printf("❌ The server rejected the request while %s\n", action)
	pterm.Printf("   %s\n", msg)
	pterm.Println()
}

func showGenericError(action, host, details string) {
	pterm.Printf("❌ Cannot reach %s while %s\n", host, action)
	pterm.Println()
	if details != "" {
		short := details
		if len(short) > 100 {
			short = short[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", short)
		pterm.Println()
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinaai/internal/wire"
)

func TestClassify_StatusTable(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		capability wire.Capability
		want       Kind
	}{
		{"401 any", 401, wire.Search, Unauthorized},
		{"429 any", 429, wire.Reader, RateLimited},
		{"451 reader", 451, wire.Reader, ContentUnavailableLegal},
		{"451 search is generic", 451, wire.Search, GenericApiError},
		{"404 grounding", 404, wire.Grounding, ServiceUnavailable},
		{"404 reader is generic", 404, wire.Reader, GenericApiError},
		{"400", 400, wire.Search, BadRequest},
		{"422", 422, wire.Reader, ValidationFailed},
		{"500", 500, wire.Grounding, InternalServerError},
		{"503", 503, wire.Search, ServiceUnavailable},
		{"418", 418, wire.Search, GenericApiError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("POST: %w", &HTTPError{Status: tt.status, Body: `{"message":"nope"}`})
			got := Classify(err, tt.capability)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.status, got.Status)
			assert.True(t, strings.HasPrefix(got.Error(), "["+string(tt.want)+"] "), got.Error())
		})
	}
}

func TestClassify_UnauthorizedMessage(t *testing.T) {
	got := Classify(&HTTPError{Status: 401, Body: "bad key"}, wire.Search)
	assert.Contains(t, got.Error(), "[Unauthorized]")
	assert.Contains(t, got.Error(), "JINA_API_KEY")
	assert.NotContains(t, got.Error(), "request failed")
}

func TestClassify_GenericCarriesStatusAndBody(t *testing.T) {
	got := Classify(&HTTPError{Status: 502, Body: "upstream gateway"}, wire.Reader)
	assert.Equal(t, GenericApiError, got.Kind)
	assert.Contains(t, got.Message, "502")
	assert.Contains(t, got.Message, "upstream gateway")
}

func TestClassify_Timeout(t *testing.T) {
	err := fmt.Errorf("do: %w", context.DeadlineExceeded)
	assert.Equal(t, Timeout, Classify(err, wire.Reader).Kind)

	var netTimeout net.Error = &net.DNSError{Err: "i/o timeout", Name: "r.jina.ai", IsTimeout: true}
	assert.Equal(t, Timeout, Classify(netTimeout, wire.Reader).Kind)
}

func TestClassify_HostNotFound(t *testing.T) {
	err := &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{
		Err: "no such host", Name: "nonexistent-domain-12345.com", IsNotFound: true,
	}}
	got := Classify(err, wire.Reader)
	assert.Equal(t, NetworkUnreachable, got.Kind)
	assert.Contains(t, got.Message, "nonexistent-domain-12345.com")
}

func TestClassify_Transport(t *testing.T) {
	got := Classify(errors.New("connection reset by peer"), wire.Grounding)
	assert.Equal(t, TransportError, got.Kind)
	assert.Contains(t, got.Message, "connection reset by peer")
}

func TestClassify_PassThrough(t *testing.T) {
	orig := New(MissingRequiredField, "`url` is required for read_url")
	assert.Same(t, orig, Classify(fmt.Errorf("wrapped: %w", orig), wire.Reader))
	assert.Nil(t, Classify(nil, wire.Reader))
}

func TestKindOfAndUnwrap(t *testing.T) {
	base := errors.New("root")
	err := Wrap(TransportError, base, "x")
	assert.Equal(t, TransportError, KindOf(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, Kind(""), KindOf(base))
}

func TestTrimBody(t *testing.T) {
	long := strings.Repeat("x", maxBodyInMessage+10)
	assert.True(t, strings.HasSuffix(trimBody(long), "..."))
	assert.Equal(t, "(empty body)", trimBody("   "))
}

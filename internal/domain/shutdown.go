package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ShutDownInfo is the reporting projection of one matched announcement. When
// Err is set the record means "could not determine this service's status for
// this address" and both bounds are absent; that outcome is distinct from an
// empty result list and is rendered differently.
type ShutDownInfo struct {
	Range      DateRange
	RawAddress string
	City       City
	Err        string
}

func (s ShutDownInfo) String() string {
	if s.Err != "" {
		return fmt.Sprintf("%s: unable to get (%s)", s.RawAddress, s.Err)
	}
	return fmt.Sprintf("%s: %s - %s", s.RawAddress, s.StartRepr(), s.EndRepr())
}

// StartRepr renders the start bound for messages.
func (s ShutDownInfo) StartRepr() string {
	return FormatBound(s.Range.Start, s.Range.StartBound)
}

// EndRepr renders the end bound for messages.
func (s ShutDownInfo) EndRepr() string {
	return FormatBound(s.Range.End, s.Range.EndBound)
}

// ShutDownByServiceInfo groups one service's shutdowns, ordered by start
// ascending with undated records first.
type ShutDownByServiceInfo struct {
	Service   Service
	Shutdowns []ShutDownInfo
}

// NotificationKey returns a stable hash identifying one delivered shutdown
// record, used to avoid notifying the same announcement twice.
func NotificationKey(service Service, info ShutDownInfo) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", service, info.City, info.RawAddress, info.StartRepr(), info.EndRepr())
	return hex.EncodeToString(h.Sum(nil))
}

// Package status queries the current state of a receiver over its HTTP
// status endpoint. Denon-family receivers publish a small XML document with
// power, volume, mute and input selection.
package status

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Endpoint is the lightweight main-zone status document served by
// Denon-family receivers.
const Endpoint = "/goform/formMainZone_MainZoneXmlStatusLite.xml"

// Status is the parsed receiver state.
type Status struct {
	Power        string  `json:"power"` // ON or STANDBY
	Input        string  `json:"input"`
	VolumeDB     float64 `json:"volume_db"`
	Mute         bool    `json:"mute"`
	FriendlyName string  `json:"friendly_name,omitempty"`
}

type xmlValue struct {
	Value string `xml:"value"`
}

type xmlStatus struct {
	XMLName      xml.Name `xml:"item"`
	FriendlyName xmlValue `xml:"FriendlyName"`
	Power        xmlValue `xml:"Power"`
	Input        xmlValue `xml:"InputFuncSelect"`
	MasterVolume xmlValue `xml:"MasterVolume"`
	Mute         xmlValue `xml:"Mute"`
}

// Client fetches and parses receiver status documents.
type Client struct {
	client *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{client: &http.Client{Timeout: timeout}}
}

// Fetch retrieves the status document from host:port.
func (c *Client) Fetch(ctx context.Context, host string, port int) (*Status, error) {
	target := fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(port)), Endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status query returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("reading status document: %w", err)
	}

	return Parse(body)
}

// Parse decodes a main-zone status document.
func Parse(doc []byte) (*Status, error) {
	var raw xmlStatus
	if err := xml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parsing status document: %w", err)
	}

	st := &Status{
		Power:        strings.ToUpper(strings.TrimSpace(raw.Power.Value)),
		Input:        strings.TrimSpace(raw.Input.Value),
		FriendlyName: strings.TrimSpace(raw.FriendlyName.Value),
		Mute:         strings.EqualFold(strings.TrimSpace(raw.Mute.Value), "on"),
	}

	// The receiver reports "--" for volume at the bottom of its scale.
	vol := strings.TrimSpace(raw.MasterVolume.Value)
	if vol == "" || vol == "--" {
		st.VolumeDB = -80
	} else {
		f, err := strconv.ParseFloat(vol, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing volume %q: %w", vol, err)
		}
		st.VolumeDB = f
	}

	return st, nil
}

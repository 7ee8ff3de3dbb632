package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	defaultPinEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"
	defaultGateway     = "https://gateway.pinata.cloud/ipfs/"
)

// Shared HTTP client with connection pooling for pin uploads.
var (
	pinClient *http.Client
	once      sync.Once
)

func getPinClient() *http.Client {
	once.Do(func() {
		pinClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: 60 * time.Second,
		}
	})
	return pinClient
}

// Client pins objects to Pinata and returns gateway URLs as content
// addresses.
type Client struct {
	endpoint  string
	gateway   string
	apiKey    string
	secretKey string
}

// NewClient reads Pinata credentials from PINATA_API_KEY and
// PINATA_SECRET_KEY. Endpoint and gateway can be overridden with
// PINATA_PIN_ENDPOINT and PINATA_GATEWAY for a compatible provider.
func NewClient() *Client {
	endpoint := os.Getenv("PINATA_PIN_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultPinEndpoint
	}
	gateway := os.Getenv("PINATA_GATEWAY")
	if gateway == "" {
		gateway = defaultGateway
	}
	return &Client{
		endpoint:  endpoint,
		gateway:   gateway,
		apiKey:    os.Getenv("PINATA_API_KEY"),
		secretKey: os.Getenv("PINATA_SECRET_KEY"),
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// PinFile uploads the payload and returns its gateway URL. A non-2xx status
// or a response without an IpfsHash is an error.
func (c *Client) PinFile(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write multipart payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create pin request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)

	resp, err := getPinClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pin request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pin response missing IpfsHash")
	}

	return c.gateway + pinned.IpfsHash, nil
}

// PinJSON marshals v and pins it as a JSON file.
func (c *Client) PinJSON(ctx context.Context, v interface{}, filename string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json payload: %w", err)
	}
	return c.PinFile(ctx, data, filename, "application/json")
}

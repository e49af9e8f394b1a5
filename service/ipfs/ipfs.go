package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/logger"
)

const pinataPinEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"

var cidPathRegex = regexp.MustCompile(`/ipfs/([a-zA-Z0-9]+)`)

// ErrMissingGateway is returned when no storage gateway domain is configured
var ErrMissingGateway = errors.New("PINATA_GATEWAY is missing")

// ErrUploadFailed wraps a pinning failure with the label of the payload that
// could not be pinned
type ErrUploadFailed struct {
	Name string
	Err  error
}

func (e ErrUploadFailed) Error() string {
	return fmt.Sprintf("failed to upload %s: %s", e.Name, e.Err)
}

func (e ErrUploadFailed) Unwrap() error {
	return e.Err
}

// Uploader pins payloads to content-addressed storage and returns their CIDs.
// It pins through the Pinata API when a JWT is configured and falls back to a
// self-hosted IPFS node otherwise.
type Uploader struct {
	httpClient *http.Client
	shell      *shell.Shell

	// overridable for tests
	pinataURL string
}

// NewUploader creates an uploader. The IPFS node client is only constructed
// when IPFS_URL is set.
func NewUploader(httpClient *http.Client) *Uploader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 0}
	}

	u := &Uploader{httpClient: httpClient, pinataURL: pinataPinEndpoint}
	if ipfsURL := env.GetString("IPFS_URL"); ipfsURL != "" {
		u.shell = shell.NewShell(ipfsURL)
	}

	return u
}

// UploadBytes pins a binary payload and returns its CID
func (u *Uploader) UploadBytes(ctx context.Context, data []byte, name string) (string, error) {
	cid, err := u.pin(ctx, data, name)
	if err != nil {
		return "", ErrUploadFailed{Name: name, Err: err}
	}
	return cid, nil
}

// UploadJSON marshals the value and pins the resulting document
func (u *Uploader) UploadJSON(ctx context.Context, v any, name string) (string, error) {
	marshalled, err := json.Marshal(v)
	if err != nil {
		return "", ErrUploadFailed{Name: name, Err: err}
	}
	return u.UploadBytes(ctx, marshalled, name)
}

func (u *Uploader) pin(ctx context.Context, data []byte, name string) (string, error) {
	jwt := env.GetString("PINATA_JWT")
	if jwt != "" {
		return u.pinToPinata(ctx, data, name, jwt)
	}

	if u.shell != nil {
		logger.For(ctx).Debugf("pinning %s to local IPFS node", name)
		return u.shell.Add(bytes.NewReader(data))
	}

	return "", errors.New("PINATA_JWT is missing and no IPFS node is configured")
}

func (u *Uploader) pinToPinata(ctx context.Context, data []byte, name, jwt string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}

	meta, _ := json.Marshal(map[string]string{"name": name})
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", err
	}
	if err := writer.WriteField("pinataOptions", `{"cidVersion":0}`); err != nil {
		return "", err
	}

	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.pinataURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", jwt))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		IpfsHash string `json:"IpfsHash"`
		Error    string `json:"error"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("unexpected response from pinning service: %s", raw)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", fmt.Errorf("pinning service returned status %d", resp.StatusCode)
	}

	if result.IpfsHash == "" {
		return "", errors.New("pinning service response missing CID")
	}

	logger.For(ctx).Debugf("pinned %s as %s in %s", name, result.IpfsHash, time.Since(start))

	return result.IpfsHash, nil
}

// GatewayURL resolves a gateway domain and CID into a fetchable URL. The
// domain may omit its scheme and carry a trailing slash.
func GatewayURL(gateway, cid string) string {
	if !strings.HasPrefix(gateway, "http") {
		gateway = fmt.Sprintf("https://%s", gateway)
	}
	gateway = strings.TrimSuffix(gateway, "/")
	return fmt.Sprintf("%s/ipfs/%s", gateway, cid)
}

// ExtractCID recovers the CID from a gateway URL's /ipfs/ path segment,
// returning an empty string if the URL has no such segment
func ExtractCID(url string) string {
	matches := cidPathRegex.FindStringSubmatch(url)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/pkg/crosschain"
)

// SignatureClient fetches oracle signatures of a submission from the oracle query API
type SignatureClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSignatureClient creates a new oracle API client
func NewSignatureClient(baseURL string, timeout time.Duration) *SignatureClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SignatureClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SignaturesResponse is the oracle API answer for one submission
type SignaturesResponse struct {
	SubmissionID string   `json:"submissionId"`
	Signatures   []string `json:"signatures"`
}

// FetchSignatures returns the signatures concatenated in the 65-byte form the gate verifies
func (c *SignatureClient) FetchSignatures(ctx context.Context, submissionID common.Hash) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/submissions/%s/signatures", c.baseURL, submissionID.Hex())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domainerrors.ErrNotConfirmed.Wrapf("oracle API has no signatures for %s", submissionID.Hex())
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("oracle API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out SignaturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.SubmissionID != "" && !strings.EqualFold(out.SubmissionID, submissionID.Hex()) {
		return nil, fmt.Errorf("oracle API answered for submission %s", out.SubmissionID)
	}

	blob := make([]byte, 0, len(out.Signatures)*crosschain.SignatureLength)
	for i, s := range out.Signatures {
		sig, err := hexutil.Decode(s)
		if err != nil {
			return nil, domainerrors.ErrInvalidSignatures.Wrapf("signature %d: %v", i, err)
		}
		if len(sig) != crosschain.SignatureLength {
			return nil, domainerrors.ErrInvalidSignatures.Wrapf("signature %d has %d bytes", i, len(sig))
		}
		blob = append(blob, sig...)
	}
	return blob, nil
}

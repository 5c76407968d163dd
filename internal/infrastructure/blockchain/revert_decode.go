package blockchain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	errorStringSelector = "0x08c379a0"
	panicSelector       = "0x4e487b71"
)

var revertHexPattern = regexp.MustCompile(`0x[0-9a-fA-F]{8,}`)

// RevertReason is the decoded payload of a reverted call
type RevertReason struct {
	RawHex   string `json:"rawHex"`
	Selector string `json:"selector,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message"`
}

// DecodeRevert extracts revert bytes from an RPC error. rpc.DataError payloads are
// preferred; otherwise the first long hex literal of the message is used.
func DecodeRevert(err error) (RevertReason, bool) {
	if err == nil {
		return RevertReason{}, false
	}
	var dataErr interface{ ErrorData() interface{} }
	if errors.As(err, &dataErr) {
		if data, ok := revertBytes(dataErr.ErrorData()); ok {
			return decodeRevertData(data), true
		}
	}
	for _, candidate := range revertHexPattern.FindAllString(err.Error(), -1) {
		if data, ok := parseHexBytes(candidate); ok {
			return decodeRevertData(data), true
		}
	}
	return RevertReason{}, false
}

func revertBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return parseHexBytes(v)
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		return append([]byte(nil), v...), true
	case map[string]interface{}:
		if raw, ok := v["data"]; ok {
			return revertBytes(raw)
		}
	}
	return nil, false
}

func parseHexBytes(raw string) ([]byte, bool) {
	value := strings.TrimSpace(strings.TrimPrefix(raw, "0x"))
	if len(value) < 8 || len(value)%2 != 0 {
		return nil, false
	}
	data, err := hex.DecodeString(value)
	if err != nil {
		return nil, false
	}
	return data, true
}

func decodeRevertData(data []byte) RevertReason {
	reason := RevertReason{RawHex: "0x" + hex.EncodeToString(data), Message: "execution reverted"}
	if len(data) < 4 {
		return reason
	}
	reason.Selector = "0x" + hex.EncodeToString(data[:4])

	switch reason.Selector {
	case errorStringSelector:
		stringType, _ := abi.NewType("string", "", nil)
		values, err := abi.Arguments{{Type: stringType}}.Unpack(data[4:])
		if err == nil && len(values) == 1 {
			if msg, ok := values[0].(string); ok {
				reason.Name = "Error"
				reason.Message = msg
			}
		}
	case panicSelector:
		if len(data) >= 36 {
			reason.Name = "Panic"
			reason.Message = fmt.Sprintf("panic code: %s", new(big.Int).SetBytes(data[4:36]))
		}
	}
	return reason
}

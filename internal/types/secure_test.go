package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

const testSecret = "owm-api-key-12345"

func TestSecretString_NeverPrints(t *testing.T) {
	s := SecretString(testSecret)

	for _, out := range []string{s.String(), fmt.Sprintf("%s", s), fmt.Sprintf("%v", s)} {
		if strings.Contains(out, testSecret) {
			t.Errorf("formatted output leaked the raw secret: %q", out)
		}
	}
}

func TestSecretString_MarshalJSON(t *testing.T) {
	payload := struct {
		Key SecretString `json:"key"`
	}{Key: SecretString(testSecret)}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), testSecret) {
		t.Errorf("JSON leaked the raw secret: %s", data)
	}
}

func TestSecretString_Unmask(t *testing.T) {
	if got := SecretString(testSecret).Unmask(); got != testSecret {
		t.Errorf("Unmask() = %q, want %q", got, testSecret)
	}
}

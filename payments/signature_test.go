package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSignature_KnownVector(t *testing.T) {
	body := []byte(`{"payment_id":123,"payment_status":"finished"}`)

	got := ComputeSignature("test-ipn-secret", body)

	assert.Equal(t,
		"ec3953752c67271fbc9083b0a534d95e3d53776f07b3dcd51de765e6457e9b58"+
			"7998982fd11e7fb30cb21e952f7bcbf731f419bf9d3f037807a0dec61e1ce4ff",
		got)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"payment_id":123,"payment_status":"finished"}`)
	sig := ComputeSignature("test-ipn-secret", body)

	assert.True(t, VerifySignature("test-ipn-secret", body, sig))
	assert.False(t, VerifySignature("wrong-secret", body, sig))
	assert.False(t, VerifySignature("test-ipn-secret", []byte(`{"payment_id":124}`), sig))
	assert.False(t, VerifySignature("test-ipn-secret", body, ""))
	assert.False(t, VerifySignature("test-ipn-secret", body, sig[:len(sig)-2]+"00"))
}

func TestVerifySignature_SensitiveToExactBytes(t *testing.T) {
	body := []byte(`{"payment_id": 123}`)
	reserialized := []byte(`{"payment_id":123}`)
	sig := ComputeSignature("test-ipn-secret", body)

	assert.True(t, VerifySignature("test-ipn-secret", body, sig))
	assert.False(t, VerifySignature("test-ipn-secret", reserialized, sig))
}

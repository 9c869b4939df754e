package biometric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFeatureVector(t *testing.T) {
	vec := ExtractFeatureVector([]byte("fingerprint-sample"))
	require.Len(t, vec, 64)

	// Same sample, same vector.
	require.Equal(t, vec, ExtractFeatureVector([]byte("fingerprint-sample")))

	// Different sample, different vector.
	require.NotEqual(t, vec, ExtractFeatureVector([]byte("other-sample")))
}

func TestCreateCancellableTemplate(t *testing.T) {
	vec := ExtractFeatureVector([]byte("fingerprint-sample"))

	template, err := CreateCancellableTemplate(vec, "alice")
	require.NoError(t, err)
	require.Len(t, template.Transformed, templateBytes)
	require.Len(t, template.CancelToken, templateBytes)
	require.Len(t, template.TemplateID, 64)

	// The transform must be invertible with the token and nothing less.
	for i := 0; i < templateBytes; i++ {
		require.Equal(t, vec[i], template.Transformed[i]^template.CancelToken[i])
	}
	require.NotEqual(t, vec[:templateBytes], template.Transformed)
}

func TestTemplatesDifferPerIssue(t *testing.T) {
	vec := ExtractFeatureVector([]byte("fingerprint-sample"))

	first, err := CreateCancellableTemplate(vec, "alice")
	require.NoError(t, err)
	second, err := CreateCancellableTemplate(vec, "alice")
	require.NoError(t, err)

	// Fresh random token on every issue, so the same biometric never yields
	// the same template twice.
	require.NotEqual(t, first.CancelToken, second.CancelToken)
	require.NotEqual(t, first.Transformed, second.Transformed)
	require.NotEqual(t, first.TemplateID, second.TemplateID)
}

func TestRevokeAndReissue(t *testing.T) {
	vec := ExtractFeatureVector([]byte("fingerprint-sample"))

	original, err := CreateCancellableTemplate(vec, "alice")
	require.NoError(t, err)
	reissued, err := RevokeAndReissue(vec, "alice")
	require.NoError(t, err)

	require.NotEqual(t, original.TemplateID, reissued.TemplateID)
	require.NotEqual(t, original.CancelToken, reissued.CancelToken)
}

func TestFeatureVectorTooShort(t *testing.T) {
	_, err := CreateCancellableTemplate(make([]byte, templateBytes-1), "alice")
	require.Error(t, err)
}

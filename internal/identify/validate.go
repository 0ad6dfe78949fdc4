package identify

import (
	"bytes"
	"encoding/base64"
	"io"
	"math"

	"github.com/ssingh-rookie/LeafWise-API/internal/providers"
)

// validateImageSizes enforces spec §4.6 step 1: each image, after
// data-URI strip, has an estimated decoded size ceil(len(b64) * 0.75) <=
// 10MB; violating any image rejects the whole call naming the offending
// index.
func validateImageSizes(imagesBase64 []string) error {
	if len(imagesBase64) == 0 || len(imagesBase64) > 5 {
		return &ImageCountError{Count: len(imagesBase64)}
	}
	for i, img := range imagesBase64 {
		stripped := providers.StripDataURI(img)
		estimated := int(math.Ceil(float64(len(stripped)) * 0.75))
		if estimated > maxDecodedImageBytes {
			return &ImageTooLargeError{Index: i}
		}
	}
	return nil
}

func decodeBase64Image(imageBase64 string) ([]byte, error) {
	stripped := providers.StripDataURI(imageBase64)
	return base64.StdEncoding.DecodeString(stripped)
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

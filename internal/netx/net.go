// Package netx holds small network helpers shared by the client.
package netx

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// UploadToPresignedURL PUTs data to an S3 presigned URL. Any 2xx reply
// counts as success.
func UploadToPresignedURL(ctx context.Context, c *resty.Client, url string, data []byte) error {
	resp, err := c.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(url)
	if err != nil {
		return err
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status(), resp.String())
	}
	return nil
}

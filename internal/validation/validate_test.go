package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objstream/s3sink/errors"
	"github.com/objstream/s3sink/sinktypes"
)

func validDestination() sinktypes.DestinationConfig {
	return sinktypes.DestinationConfig{
		AccessKey: "AKIAEXAMPLE",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "my-bucket",
	}
}

func TestValidateDestination(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*sinktypes.DestinationConfig)
		wantMsg string
	}{
		{
			name:   "valid",
			mutate: func(*sinktypes.DestinationConfig) {},
		},
		{
			name:    "missing access key",
			mutate:  func(d *sinktypes.DestinationConfig) { d.AccessKey = "" },
			wantMsg: "access key cannot be empty",
		},
		{
			name:    "missing secret key",
			mutate:  func(d *sinktypes.DestinationConfig) { d.SecretKey = "" },
			wantMsg: "secret key cannot be empty",
		},
		{
			name:    "missing region",
			mutate:  func(d *sinktypes.DestinationConfig) { d.Region = "" },
			wantMsg: "region cannot be empty",
		},
		{
			name:    "missing bucket",
			mutate:  func(d *sinktypes.DestinationConfig) { d.Bucket = "" },
			wantMsg: "bucket name cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := validDestination()
			tt.mutate(&dest)

			err := ValidateDestination(dest)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalidConfiguration(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateDestination_NeverEchoesCredentials(t *testing.T) {
	dest := validDestination()
	dest.SecretKey = ""
	dest.AccessKey = "AKIA-SUPER-SECRET-VALUE"

	err := ValidateDestination(dest)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "AKIA-SUPER-SECRET-VALUE")
}

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{name: "valid simple", bucket: "my-bucket"},
		{name: "valid with dots", bucket: "my.bucket.name"},
		{name: "valid with digits", bucket: "bucket123"},
		{name: "valid minimum length", bucket: "abc"},
		{name: "valid maximum length", bucket: strings.Repeat("a", 63)},
		{name: "empty", bucket: "", wantErr: true},
		{name: "too short", bucket: "ab", wantErr: true},
		{name: "too long", bucket: strings.Repeat("a", 64), wantErr: true},
		{name: "uppercase", bucket: "My-Bucket", wantErr: true},
		{name: "underscore", bucket: "my_bucket", wantErr: true},
		{name: "leading hyphen", bucket: "-bucket", wantErr: true},
		{name: "trailing hyphen", bucket: "bucket-", wantErr: true},
		{name: "leading dot", bucket: ".bucket", wantErr: true},
		{name: "trailing dot", bucket: "bucket.", wantErr: true},
		{name: "adjacent dots", bucket: "my..bucket", wantErr: true},
		{name: "adjacent hyphens", bucket: "my--bucket", wantErr: true},
		{name: "ip address", bucket: "192.168.1.1", wantErr: true},
		{name: "not quite an ip", bucket: "192.168.1.256"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidConfiguration(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid simple", key: "file.txt"},
		{name: "valid nested", key: "path/to/file.txt"},
		{name: "valid with spaces", key: "my file.txt"},
		{name: "valid unicode", key: "日本語.txt"},
		{name: "valid maximum length", key: strings.Repeat("a", 1024)},
		{name: "empty", key: "", wantErr: true},
		{name: "too long", key: strings.Repeat("a", 1025), wantErr: true},
		{name: "parent traversal", key: "../etc/passwd", wantErr: true},
		{name: "embedded traversal", key: "path/../../etc/passwd", wantErr: true},
		{name: "absolute path", key: "/etc/passwd", wantErr: true},
		{name: "windows drive path", key: `c:\windows\system32`, wantErr: true},
		{name: "newline", key: "file\nname", wantErr: true},
		{name: "null byte", key: "file\x00name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}

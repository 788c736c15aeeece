package inspect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-minifs/pkg/app"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		wantErr bool
		errCode string
	}{
		{
			name: "valid list request",
			request: Request{
				Target: app.ImageTarget{ImagePath: "minifs.img"},
				Mode:   ModeList,
				Path:   "/a",
			},
		},
		{
			name: "info needs no path",
			request: Request{
				Target: app.ImageTarget{ImagePath: "minifs.img"},
				Mode:   ModeInfo,
			},
		},
		{
			name: "missing image path",
			request: Request{
				Mode: ModeInfo,
			},
			wantErr: true,
			errCode: app.ErrCodeInvalidInput,
		},
		{
			name: "relative path",
			request: Request{
				Target: app.ImageTarget{ImagePath: "minifs.img"},
				Mode:   ModeStat,
				Path:   "a/b",
			},
			wantErr: true,
			errCode: app.ErrCodeInvalidInput,
		},
		{
			name: "unknown mode",
			request: Request{
				Target: app.ImageTarget{ImagePath: "minifs.img"},
				Mode:   "tree",
			},
			wantErr: true,
			errCode: app.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var common *app.CommonError
			require.True(t, errors.As(err, &common))
			assert.Equal(t, tt.errCode, common.Code)
		})
	}
}

func TestValidateDefaultsPathToRoot(t *testing.T) {
	req := Request{Target: app.ImageTarget{ImagePath: "minifs.img"}, Mode: ModeList}
	require.NoError(t, req.Validate())
	assert.Equal(t, "/", req.Path)
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{"table", "json", "yaml"} {
		assert.NoError(t, ValidateOutputFormat(format))
	}
	assert.Error(t, ValidateOutputFormat("xml"))
}

package mailservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	template := &Template{}

	testCases := []struct {
		name         string
		templateName string
		data         any
		expectedErr  bool
	}{
		{
			name:         "success",
			templateName: "verification_email.html",
			data: struct {
				VerificationToken string
			}{
				VerificationToken: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			},
			expectedErr: false,
		},
		{
			name:         "invalid template name",
			templateName: "invalid_template.html",
			data:         nil,
			expectedErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)
			assert.Equal(t, tc.expectedErr, err != nil)

			if err == nil {
				assert.NotEmpty(t, s.String())
				assert.True(t, strings.Contains(p.String(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
				assert.True(t, strings.Contains(h.String(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
			}
		})
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"codesathi/internal/logger"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailServiceVerification(t *testing.T) {
	ses := &fakeSES{}
	svc := newEmailService(ses, logger.Nop(), "hello@codesathi.dev", "CodeSathi", "https://codesathi.dev", true)

	require.NoError(t, svc.SendVerificationEmail(context.Background(), "kid@example.com", "a.b+c"))
	require.Len(t, ses.inputs, 1)

	in := ses.inputs[0]
	assert.Equal(t, "CodeSathi <hello@codesathi.dev>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"kid@example.com"}, in.Destination.ToAddresses)
	body := aws.ToString(in.Content.Simple.Body.Text.Data)
	assert.Contains(t, body, "https://codesathi.dev/auth/verify?code=a.b%2Bc")
}

func TestEmailServiceSendFailure(t *testing.T) {
	ses := &fakeSES{err: errors.New("throttled")}
	svc := newEmailService(ses, logger.Nop(), "hello@codesathi.dev", "", "https://codesathi.dev", false)

	err := svc.SendWelcomeEmail(context.Background(), "kid@example.com", "Asha")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "throttled"))
	assert.Equal(t, "hello@codesathi.dev", aws.ToString(ses.inputs[0].FromEmailAddress))
}

func TestEmailServiceDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc, err := NewEmailService(context.Background(), logger.FromCore(core), "us-east-1", "", "", "", false)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())

	require.NoError(t, svc.SendVerificationEmail(context.Background(), "kid@example.com", "code"))
	assert.Equal(t, 1, logs.FilterMessage("skipping email send (service disabled)").Len())
}

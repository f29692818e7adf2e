package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Trek_Community/internal/apperr"
	"Trek_Community/internal/model"
	"Trek_Community/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newVerificationFixture(t *testing.T) (*VerificationService, *memory.Store, *fakeMailer, *fakeClock, *model.User) {
	store := memory.New()
	mailer := &fakeMailer{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewVerificationService(store.Codes(), store.Users(), mailer, clock, 15*time.Minute, 6, zerolog.Nop())

	user := &model.User{Username: "hiker", Password: "x", Email: "hiker@example.com"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return svc, store, mailer, clock, user
}

// 从存储侧读出刚签发的码，测试里模拟"用户收到了邮件"
func issuedCode(t *testing.T, store *memory.Store, purpose model.Purpose, userID uint64) string {
	rec, err := store.Codes().Get(context.Background(), purpose, userID)
	require.NoError(t, err)
	return rec.Code
}

func TestVerification_GenerateThenVerify(t *testing.T) {
	svc, store, mailer, _, user := newVerificationFixture(t)
	ctx := context.Background()

	confirmation, err := svc.Generate(ctx, user.ID, model.PurposeEmailVerify, user.Email)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, user.Email, mailer.sent[0].to)

	code := issuedCode(t, store, model.PurposeEmailVerify, user.ID)
	// 确认 id 不是验证码本身
	assert.NotEqual(t, code, confirmation)
	assert.Contains(t, mailer.sent[0].body, code)

	require.NoError(t, svc.Verify(ctx, user.ID, model.PurposeEmailVerify, code))

	// 成功消费后用户邮箱被标记
	u, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	// 同一个码再来一次：AlreadyConsumed，不会静默成功
	err = svc.Verify(ctx, user.ID, model.PurposeEmailVerify, code)
	assert.ErrorIs(t, err, apperr.ErrAlreadyConsumed)
}

func TestVerification_MismatchLeavesCodePending(t *testing.T) {
	svc, store, _, _, user := newVerificationFixture(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, user.ID, model.PurposeEmailVerify, user.Email)
	require.NoError(t, err)
	code := issuedCode(t, store, model.PurposeEmailVerify, user.ID)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = svc.Verify(ctx, user.ID, model.PurposeEmailVerify, wrong)
	assert.ErrorIs(t, err, apperr.ErrMismatch)

	// 错误尝试不烧掉存量码，TTL 内正确的码照样能过
	require.NoError(t, svc.Verify(ctx, user.ID, model.PurposeEmailVerify, code))
}

func TestVerification_Expired(t *testing.T) {
	svc, store, _, clock, user := newVerificationFixture(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, user.ID, model.PurposeEmailVerify, user.Email)
	require.NoError(t, err)
	code := issuedCode(t, store, model.PurposeEmailVerify, user.ID)

	clock.now = clock.now.Add(16 * time.Minute)
	err = svc.Verify(ctx, user.ID, model.PurposeEmailVerify, code)
	assert.ErrorIs(t, err, apperr.ErrExpired)
}

func TestVerification_SecondGenerateInvalidatesFirst(t *testing.T) {
	svc, store, _, _, user := newVerificationFixture(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, user.ID, model.PurposeEmailVerify, user.Email)
	require.NoError(t, err)
	first := issuedCode(t, store, model.PurposeEmailVerify, user.ID)

	_, err = svc.Generate(ctx, user.ID, model.PurposeEmailVerify, user.Email)
	require.NoError(t, err)
	second := issuedCode(t, store, model.PurposeEmailVerify, user.ID)

	if first == second {
		t.Skip("generated codes collided")
	}
	err = svc.Verify(ctx, user.ID, model.PurposeEmailVerify, first)
	assert.ErrorIs(t, err, apperr.ErrMismatch)

	require.NoError(t, svc.Verify(ctx, user.ID, model.PurposeEmailVerify, second))
}

func TestVerification_NoCode(t *testing.T) {
	svc, _, _, _, user := newVerificationFixture(t)

	err := svc.Verify(context.Background(), user.ID, model.PurposeEmailVerify, "123456")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVerification_MailFailureRollsBackCode(t *testing.T) {
	svc, store, mailer, _, user := newVerificationFixture(t)
	ctx := context.Background()

	mailer.fail = true
	_, err := svc.Generate(ctx, user.ID, model.PurposeEmailVerify, user.Email)
	require.Error(t, err)

	// 邮件没发出去，不能留下一个用户收不到的有效码
	_, err = store.Codes().Get(ctx, model.PurposeEmailVerify, user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestVerification_PurposesAreIndependent(t *testing.T) {
	svc, store, _, _, user := newVerificationFixture(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, user.ID, model.PurposeEmailVerify, user.Email)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, user.ID, model.PurposePasswordReset, user.Email)
	require.NoError(t, err)

	verifyCode := issuedCode(t, store, model.PurposeEmailVerify, user.ID)
	require.NoError(t, svc.Verify(ctx, user.ID, model.PurposeEmailVerify, verifyCode))

	// reset 用途的码不受 email_verify 消费的影响
	resetCode := issuedCode(t, store, model.PurposePasswordReset, user.ID)
	require.NoError(t, svc.Verify(ctx, user.ID, model.PurposePasswordReset, resetCode))
}

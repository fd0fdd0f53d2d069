package entitlementservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/stackmeter/internal/domain"
)

type DecideSuite struct {
	suite.Suite
	now time.Time
}

func TestDecide(t *testing.T) {
	suite.Run(t, &DecideSuite{})
}

func (s *DecideSuite) SetupTest() {
	s.now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
}

func (s *DecideSuite) sub(id string, status domain.SubscriptionStatus, at time.Duration) domain.Subscription {
	return domain.Subscription{
		AccountID:              "acc_1",
		ProviderSubscriptionID: id,
		Status:                 status,
		EventAt:                s.now.Add(at),
	}
}

func (s *DecideSuite) TestFirstActivationEarnsBonus() {
	d := Decide(nil, s.sub("sub_1", domain.StatusActive, 0))
	s.True(d.Apply)
	s.True(d.Activated)
}

func (s *DecideSuite) TestRefreshIsNotActivation() {
	current := s.sub("sub_1", domain.StatusActive, 0)
	d := Decide(&current, s.sub("sub_1", domain.StatusActive, time.Minute))
	s.True(d.Apply)
	s.False(d.Activated)
}

func (s *DecideSuite) TestRecoveryFromPastDueIsNotActivation() {
	current := s.sub("sub_1", domain.StatusPastDue, 0)
	d := Decide(&current, s.sub("sub_1", domain.StatusActive, time.Minute))
	s.True(d.Apply)
	s.False(d.Activated)
}

func (s *DecideSuite) TestStaleEventIsDropped() {
	current := s.sub("sub_1", domain.StatusCanceled, 0)
	d := Decide(&current, s.sub("sub_1", domain.StatusActive, -time.Minute))
	s.False(d.Apply)
	s.Equal(reasonStale, d.Reason)
}

func (s *DecideSuite) TestOutOfOrderUpdatesConvergeOnNewest() {
	current := s.sub("sub_1", domain.StatusActive, 0)
	newer := s.sub("sub_1", domain.StatusPastDue, 2*time.Minute)
	older := s.sub("sub_1", domain.StatusActive, time.Minute)

	d := Decide(&current, newer)
	s.Require().True(d.Apply)
	d = Decide(&newer, older)
	s.False(d.Apply)
	s.Equal(reasonStale, d.Reason)
}

func (s *DecideSuite) TestNothingButActiveLeavesNone() {
	for _, status := range []domain.SubscriptionStatus{domain.StatusPastDue, domain.StatusCanceled} {
		d := Decide(nil, s.sub("sub_1", status, 0))
		s.False(d.Apply, status)
		s.Equal(reasonIllegalMove, d.Reason)

		none := domain.Subscription{AccountID: "acc_1", Status: domain.StatusNone, EventAt: s.now}
		d = Decide(&none, s.sub("sub_1", status, time.Minute))
		s.False(d.Apply, status)
	}
}

func (s *DecideSuite) TestActivationAfterEarlyDunningEarnsBonus() {
	d := Decide(nil, s.sub("sub_1", domain.StatusPastDue, 0))
	s.Require().False(d.Apply)

	d = Decide(nil, s.sub("sub_1", domain.StatusActive, time.Minute))
	s.True(d.Apply)
	s.True(d.Activated)
}

func (s *DecideSuite) TestCanceledIsTerminal() {
	current := s.sub("sub_1", domain.StatusCanceled, 0)
	for _, status := range []domain.SubscriptionStatus{domain.StatusActive, domain.StatusPastDue} {
		d := Decide(&current, s.sub("sub_1", status, time.Minute))
		s.False(d.Apply, status)
		s.Equal(reasonResurrect, d.Reason)
	}
	d := Decide(&current, s.sub("sub_1", domain.StatusCanceled, time.Minute))
	s.True(d.Apply)
}

func (s *DecideSuite) TestNewSubscriptionAfterCancelActivates() {
	current := s.sub("sub_1", domain.StatusCanceled, 0)
	d := Decide(&current, s.sub("sub_2", domain.StatusActive, time.Minute))
	s.True(d.Apply)
	s.True(d.Activated)
}

func (s *DecideSuite) TestSupersededSubscriptionCannotCancelLiveOne() {
	current := s.sub("sub_2", domain.StatusActive, 0)
	d := Decide(&current, s.sub("sub_1", domain.StatusCanceled, time.Minute))
	s.False(d.Apply)
	s.Equal(reasonSuperseded, d.Reason)
}

func TestEntitlement(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	periodEnd := now.Add(-24 * time.Hour)
	expiredPeriod := now.Add(-96 * time.Hour)
	grace := 72 * time.Hour

	tests := []struct {
		name          string
		sub           *domain.Subscription
		repoErr       error
		expectStatus  domain.SubscriptionStatus
		expectPremium bool
		expectGrace   *time.Time
		expectErr     bool
	}{
		{
			name:         "No subscription",
			expectStatus: domain.StatusNone,
		},
		{
			name:          "Active",
			sub:           &domain.Subscription{Status: domain.StatusActive, Plan: "pro"},
			expectStatus:  domain.StatusActive,
			expectPremium: true,
		},
		{
			name:          "Past due inside grace",
			sub:           &domain.Subscription{Status: domain.StatusPastDue, PeriodEnd: &periodEnd},
			expectStatus:  domain.StatusPastDue,
			expectPremium: true,
			expectGrace:   ptr(periodEnd.Add(grace)),
		},
		{
			name:         "Past due after grace",
			sub:          &domain.Subscription{Status: domain.StatusPastDue, PeriodEnd: &expiredPeriod},
			expectStatus: domain.StatusPastDue,
			expectGrace:  ptr(expiredPeriod.Add(grace)),
		},
		{
			name:          "Past due without period end counts from the event",
			sub:           &domain.Subscription{Status: domain.StatusPastDue, EventAt: now.Add(-time.Hour)},
			expectStatus:  domain.StatusPastDue,
			expectPremium: true,
			expectGrace:   ptr(now.Add(-time.Hour).Add(grace)),
		},
		{
			name:         "Canceled",
			sub:          &domain.Subscription{Status: domain.StatusCanceled},
			expectStatus: domain.StatusCanceled,
		},
		{
			name:      "Datastore error",
			repoErr:   errors.New("db error"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := NewMockRepo(ctrl)
			service := New(repo, grace)
			service.now = func() time.Time { return now }
			repo.EXPECT().Find(gomock.Any(), "acc_1").Return(tt.sub, tt.repoErr)

			ent, err := service.Entitlement(context.Background(), "acc_1")
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectStatus, ent.Status)
			assert.Equal(t, tt.expectPremium, ent.Premium)
			assert.Equal(t, tt.expectGrace, ent.GraceUntil)
		})
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}

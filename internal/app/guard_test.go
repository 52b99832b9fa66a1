package app

import (
	"context"
	"errors"
	"testing"

	"github.com/famo7/meetopia-api/internal/core/mocks"
	"go.uber.org/mock/gomock"
)

func TestAccessGuardCheck(t *testing.T) {
	storeErr := errors.New("db down")
	tests := []struct {
		name    string
		allowed bool
		err     error
		want    error
	}{
		{name: "granted", allowed: true},
		{name: "denied", allowed: false, want: ErrAccessDenied},
		{name: "lookup failure", err: storeErr, want: ErrAccessCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			checker := mocks.NewMockAccessChecker(ctrl)
			checker.EXPECT().UserHasMeetingAccess(gomock.Any(), gomock.Eq(domainMeeting("5")), gomock.Eq(domainUser(10))).Return(tt.allowed, tt.err)

			err := NewAccessGuard(checker).Check(context.Background(), "5", 10)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want wrapped %v", err, tt.err)
			}
		})
	}
}

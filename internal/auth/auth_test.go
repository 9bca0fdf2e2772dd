package auth_test

import (
	"context"
	"testing"
	"time"

	docstore "github.com/ringsidehq/ringside/internal/adapters/docstore"
	auth "github.com/ringsidehq/ringside/internal/auth"
	"github.com/ringsidehq/ringside/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAuthService(t *testing.T) {
	Convey("Given an auth service over an empty store", t, func() {
		ctx := context.Background()
		store := docstore.NewMemStore()
		defer store.Close()
		svc := auth.New(store, "test-secret")

		Convey("When registering a judge", func() {
			user, err := svc.Register(ctx, "Judge@Example.com", "Jane Judge", "sit-stay-down", model.RoleJudge)
			So(err, ShouldBeNil)

			Convey("Then the email is normalized and the hash is not the password", func() {
				So(user.UID, ShouldNotBeEmpty)
				So(user.Email, ShouldEqual, "judge@example.com")
				So(user.PasswordHash, ShouldNotContainSubstring, "sit-stay-down")
			})

			Convey("And registering the same email again fails", func() {
				_, err := svc.Register(ctx, "judge@example.com", "Other", "pw", model.RoleJudge)
				So(err, ShouldWrap, auth.ErrEmailTaken)
			})

			Convey("And login with the right password yields a verifiable token", func() {
				token, logged, err := svc.Login(ctx, "judge@example.com", "sit-stay-down")
				So(err, ShouldBeNil)
				So(logged.UID, ShouldEqual, user.UID)

				p, err := svc.Verify(token)
				So(err, ShouldBeNil)
				So(p.UID, ShouldEqual, user.UID)
				So(p.Role, ShouldEqual, model.RoleJudge)
				So(p.IsAdmin(), ShouldBeFalse)
			})

			Convey("And login with a wrong password is rejected", func() {
				_, _, err := svc.Login(ctx, "judge@example.com", "wrong")
				So(err, ShouldEqual, auth.ErrInvalidCredentials)
			})

			Convey("And the role can be looked up by uid", func() {
				role, err := svc.LookupRole(ctx, user.UID)
				So(err, ShouldBeNil)
				So(role, ShouldEqual, model.RoleJudge)
			})
		})

		Convey("When registering with an unknown role", func() {
			_, err := svc.Register(ctx, "x@example.com", "X", "pw", model.Role("steward"))
			So(err, ShouldWrap, auth.ErrUnknownRole)
		})

		Convey("When logging in an unknown email", func() {
			_, _, err := svc.Login(ctx, "ghost@example.com", "pw")
			So(err, ShouldEqual, auth.ErrInvalidCredentials)
		})

		Convey("When verifying tokens from another secret", func() {
			other := auth.New(store, "other-secret")
			_, err := other.Register(ctx, "a@example.com", "A", "pw", model.RoleAdmin)
			So(err, ShouldBeNil)
			token, _, err := other.Login(ctx, "a@example.com", "pw")
			So(err, ShouldBeNil)

			_, err = svc.Verify(token)
			So(err, ShouldWrap, auth.ErrInvalidToken)
		})

		Convey("When a token has expired", func() {
			frozen := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
			issuing := auth.New(store, "test-secret",
				auth.WithTokenTTL(time.Minute),
				auth.WithClock(func() time.Time { return frozen }),
			)
			_, err := issuing.Register(ctx, "b@example.com", "B", "pw", model.RoleAdmin)
			So(err, ShouldBeNil)
			token, _, err := issuing.Login(ctx, "b@example.com", "pw")
			So(err, ShouldBeNil)

			later := auth.New(store, "test-secret",
				auth.WithClock(func() time.Time { return frozen.Add(time.Hour) }),
			)
			_, err = later.Verify(token)
			So(err, ShouldWrap, auth.ErrInvalidToken)
		})
	})
}

func TestPrincipalContext(t *testing.T) {
	Convey("Given a principal", t, func() {
		p := auth.Principal{UID: "u1", Role: model.RoleAdmin}

		Convey("Then it round-trips through context", func() {
			ctx := auth.WithPrincipal(context.Background(), p)
			got, ok := auth.PrincipalFrom(ctx)
			So(ok, ShouldBeTrue)
			So(got.UID, ShouldEqual, "u1")
			So(got.IsAdmin(), ShouldBeTrue)
		})

		Convey("Then an empty context has no principal", func() {
			_, ok := auth.PrincipalFrom(context.Background())
			So(ok, ShouldBeFalse)
		})
	})
}

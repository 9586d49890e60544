package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okian/papermatch/internal/adapters/auth"
	"github.com/smartystreets/goconvey/convey"
)

func TestVerifier(t *testing.T) {
	convey.Convey("Given a verifier", t, func() {
		now := time.Unix(1_700_000_000, 0)
		v, err := auth.NewVerifier("s3cret", auth.WithIssuer("papermatch"), auth.WithClock(func() time.Time { return now }))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When verifying a token it issued", func() {
			tok, err := v.Issue("user-1", time.Hour)
			convey.So(err, convey.ShouldBeNil)
			sub, err := v.Verify(tok)

			convey.So(err, convey.ShouldBeNil)
			convey.So(sub, convey.ShouldEqual, "user-1")
		})

		convey.Convey("When the user id is in the user_id claim", func() {
			claims := &auth.Claims{UserID: "user-2", RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "papermatch",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			}}
			tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
			sub, err := v.Verify(tok)

			convey.So(err, convey.ShouldBeNil)
			convey.So(sub, convey.ShouldEqual, "user-2")
		})

		convey.Convey("When the token has expired", func() {
			tok, _ := v.Issue("user-1", -time.Minute)
			_, err := v.Verify(tok)

			convey.So(errors.Is(err, auth.ErrTokenExpired), convey.ShouldBeTrue)
		})

		convey.Convey("When the token was signed with another secret", func() {
			other, _ := auth.NewVerifier("other", auth.WithIssuer("papermatch"))
			tok, _ := other.Issue("user-1", time.Hour)
			_, err := v.Verify(tok)

			convey.So(errors.Is(err, auth.ErrInvalidToken), convey.ShouldBeTrue)
		})

		convey.Convey("When the issuer does not match", func() {
			other, _ := auth.NewVerifier("s3cret", auth.WithIssuer("someone-else"), auth.WithClock(func() time.Time { return now }))
			tok, _ := other.Issue("user-1", time.Hour)
			_, err := v.Verify(tok)

			convey.So(errors.Is(err, auth.ErrInvalidToken), convey.ShouldBeTrue)
		})

		convey.Convey("When the token has no subject", func() {
			tok, _ := v.Issue("", time.Hour)
			_, err := v.Verify(tok)

			convey.So(errors.Is(err, auth.ErrInvalidToken), convey.ShouldBeTrue)
		})

		convey.Convey("When the token is garbage", func() {
			_, err := v.Verify("not.a.token")

			convey.So(errors.Is(err, auth.ErrInvalidToken), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given no secret", t, func() {
		_, err := auth.NewVerifier("")

		convey.So(errors.Is(err, auth.ErrNoSecret), convey.ShouldBeTrue)
	})
}

func TestContext(t *testing.T) {
	convey.Convey("Given a request context", t, func() {
		ctx := context.Background()

		convey.So(auth.UserFrom(ctx), convey.ShouldEqual, "")
		convey.So(auth.UserFrom(auth.WithUser(ctx, "u")), convey.ShouldEqual, "u")
	})
}

package auth

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("TokenCodec", func() {
	const secret = "another-test-secret-of-decent-size"

	var codec *TokenCodec

	ginkgo.BeforeEach(func() {
		codec = NewTokenCodec(secret, 15*time.Minute)
	})

	ginkgo.It("round-trips the claim bundle", func() {
		signed, err := codec.Encode(&Claims{ID: 42, Name: "Test User", AccessVersion: 3, PasswordVersion: 2})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		decoded, err := codec.Decode(signed)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(decoded.ID).To(gomega.Equal(int64(42)))
		gomega.Expect(decoded.AccessVersion).To(gomega.Equal(3))
		gomega.Expect(decoded.PasswordVersion).To(gomega.Equal(2))
	})

	ginkgo.It("stamps a parseable application-level expiry", func() {
		signed, err := codec.Encode(&Claims{ID: 1})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		decoded, err := codec.Decode(signed)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		exp, err := ParseExpiry(decoded)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(exp).To(gomega.BeTemporally("~", time.Now().UTC().Add(15*time.Minute), time.Minute))
	})

	ginkgo.It("rejects a token signed with a different secret", func() {
		other := NewTokenCodec("completely-different-secret-value!", 15*time.Minute)
		signed, err := other.Encode(&Claims{ID: 1})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = codec.Decode(signed)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("rejects garbage input", func() {
		_, err := codec.Decode("not.a.token")
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("still decodes an expired token so the reason is reportable", func() {
		expired := NewTokenCodec(secret, -time.Minute)
		signed, err := expired.Encode(&Claims{ID: 1})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		decoded, err := codec.Decode(signed)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		exp, err := ParseExpiry(decoded)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(exp).To(gomega.BeTemporally("<", time.Now().UTC()))
	})
})

var _ = ginkgo.Describe("TokenValidator", func() {
	const secret = "validator-test-secret-of-decent-size"

	var (
		repo      *mockRepository
		codec     *TokenCodec
		validator *TokenValidator
	)

	issue := func(userID int64) string {
		resolver := NewAccessResolver(repo)
		claims, err := resolver.Resolve(repo.users[userID])
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		signed, err := codec.Encode(claims)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return signed
	}

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		codec = NewTokenCodec(secret, 30*time.Minute)
		validator = NewTokenValidator(codec, repo)

		repo.addUser(&User{ID: 1, Username: "alice", FirstName: "Alice", IsActive: true}, "pw")
	})

	ginkgo.It("accepts a freshly issued token", func() {
		principal, err := validator.Validate(issue(1))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(principal.ID).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("rejects a tampered token before touching the store", func() {
		token := issue(1)
		_, err := validator.Validate(token[:len(token)-2] + "xx")
		expectRejection(err, RejectedBadSignature)
	})

	ginkgo.It("rejects a token for a deleted user", func() {
		token := issue(1)
		delete(repo.users, 1)
		_, err := validator.Validate(token)
		expectRejection(err, RejectedUserNotFound)
	})

	ginkgo.It("rejects a token once the user is deactivated", func() {
		token := issue(1)
		repo.users[1].IsActive = false
		_, err := validator.Validate(token)
		expectRejection(err, RejectedInactive)
	})

	ginkgo.It("rejects a token once a temp password is issued for the user", func() {
		token := issue(1)
		temp := "some-digest"
		repo.users[1].PasswordTemp = &temp
		_, err := validator.Validate(token)
		expectRejection(err, RejectedPasswordTemp)
	})

	ginkgo.It("rejects a token after an access_version bump", func() {
		token := issue(1)
		repo.users[1].AccessVersion++
		_, err := validator.Validate(token)
		expectRejection(err, RejectedStaleAccessVersion)
	})

	ginkgo.It("rejects a token after a password_version bump", func() {
		token := issue(1)
		repo.users[1].PasswordVersion++
		_, err := validator.Validate(token)
		expectRejection(err, RejectedStalePasswordVersion)
	})

	ginkgo.It("reports the temp lockout ahead of version staleness", func() {
		token := issue(1)
		temp := "some-digest"
		repo.users[1].PasswordTemp = &temp
		repo.users[1].AccessVersion++
		_, err := validator.Validate(token)
		expectRejection(err, RejectedPasswordTemp)
	})

	ginkgo.It("treats missing version claims as stale, never as matching", func() {
		// counters start at 1, so a zero-valued claim can never match
		signed, err := codec.Encode(&Claims{ID: 1})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = validator.Validate(signed)
		expectRejection(err, RejectedStaleAccessVersion)
	})

	ginkgo.It("rejects an expired token last, after all state checks", func() {
		expiredCodec := NewTokenCodec(secret, -time.Minute)
		resolver := NewAccessResolver(repo)
		claims, err := resolver.Resolve(repo.users[1])
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		signed, err := expiredCodec.Encode(claims)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = validator.Validate(signed)
		expectRejection(err, RejectedExpired)

		// the same expired token reports deactivation first
		repo.users[1].IsActive = false
		_, err = validator.Validate(signed)
		expectRejection(err, RejectedInactive)
	})
})

var _ = ginkgo.Describe("AccessResolver", func() {
	var (
		repo     *mockRepository
		resolver *AccessResolver
	)

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		resolver = NewAccessResolver(repo)
		repo.addUser(&User{ID: 1, Username: "alice", FirstName: "Alice", LastName: "Ammon", IsActive: true}, "pw")
	})

	ginkgo.It("lists apps in grant order with their view buckets", func() {
		repo.apps[1] = []AppRef{{ID: 11, Name: "billing"}, {ID: 12, Name: "reports"}}
		repo.appViews[11] = []string{"invoices", "refunds"}
		repo.appViews[12] = []string{"monthly"}

		claims, err := resolver.Resolve(repo.users[1])
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(claims.Apps).To(gomega.Equal([]string{"billing", "reports"}))
		gomega.Expect(claims.AppsViews["billing"]).To(gomega.Equal([]string{"invoices", "refunds"}))
		gomega.Expect(claims.AppsViews["reports"]).To(gomega.Equal([]string{"monthly"}))
	})

	ginkgo.It("collects direct user views into a synthetic other bucket", func() {
		repo.apps[1] = []AppRef{{ID: 11, Name: "billing"}}
		repo.appViews[11] = []string{"invoices"}
		repo.userViews[1] = []string{"admin-panel", "invoices"}

		claims, err := resolver.Resolve(repo.users[1])
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(claims.Apps).To(gomega.Equal([]string{"billing", "other"}))
		gomega.Expect(claims.AppsViews["other"]).To(gomega.Equal([]string{"admin-panel"}))
	})

	ginkgo.It("deduplicates views preserving first-seen order", func() {
		repo.apps[1] = []AppRef{{ID: 11, Name: "billing"}, {ID: 12, Name: "reports"}}
		repo.appViews[11] = []string{"shared", "invoices"}
		repo.appViews[12] = []string{"shared", "monthly"}
		repo.userViews[1] = []string{"invoices"}

		claims, err := resolver.Resolve(repo.users[1])
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(claims.Views).To(gomega.Equal([]string{"invoices", "shared", "monthly"}))
	})

	ginkgo.It("omits the other bucket when every view is app-attributed", func() {
		repo.apps[1] = []AppRef{{ID: 11, Name: "billing"}}
		repo.appViews[11] = []string{"invoices"}

		claims, err := resolver.Resolve(repo.users[1])
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(claims.Apps).To(gomega.Equal([]string{"billing"}))
		gomega.Expect(claims.AppsViews).NotTo(gomega.HaveKey("other"))
	})

	ginkgo.It("composes the display name from first and last name", func() {
		claims, err := resolver.Resolve(repo.users[1])
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(claims.Name).To(gomega.Equal("Alice Ammon"))
	})
})

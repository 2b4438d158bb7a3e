package rest_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

var _ = Describe("OpenAPI contract", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile(filepath.Join("..", "..", "..", "api", "openapi.yml"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents the authentication endpoints", func() {
		for _, path := range []string{"/auth/login", "/auth/password/temp", "/auth/password", "/auth/me"} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("documents every admin resource", func() {
		for _, path := range []string{
			"/users", "/users/{id}", "/users/{id}/on-off", "/users/{id}/password/reset",
			"/users/{id}/permissions", "/users/{id}/apps", "/users/{id}/views",
			"/user-groups", "/user-groups/{id}", "/user-groups/{id}/permissions",
			"/permissions", "/permissions/{id}", "/permissions/{id}/functions",
			"/functions", "/functions/{id}",
			"/apps", "/apps/{id}", "/apps/{id}/views",
			"/views", "/views/{id}",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("requires bearer auth on protected operations", func() {
		item := doc.Paths.Find("/users")
		Expect(item).NotTo(BeNil())
		Expect(item.Get.Security).NotTo(BeNil())
		Expect(*item.Get.Security).NotTo(BeEmpty())
	})

	It("keeps the login operation public", func() {
		item := doc.Paths.Find("/auth/login")
		Expect(item).NotTo(BeNil())
		Expect(item.Post.Security).To(BeNil())
	})
})

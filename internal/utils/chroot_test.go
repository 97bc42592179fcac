package utils_test

import (
	"os"
	"path/filepath"

	"github.com/kairos-io/immuroot/internal/utils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CheckInit", func() {
	var newRoot string

	BeforeEach(func() {
		var err error
		newRoot, err = os.MkdirTemp("", "")
		Expect(err).ToNot(HaveOccurred())
		Expect(os.MkdirAll(filepath.Join(newRoot, "sbin"), os.ModePerm)).To(Succeed())
	})
	AfterEach(func() {
		_ = os.RemoveAll(newRoot)
	})

	It("accepts an absolute symlink that only resolves inside the new root", func() {
		err := os.Symlink("/lib/systemd/immuroot-does-not-exist-here", filepath.Join(newRoot, "sbin", "init"))
		Expect(err).ToNot(HaveOccurred())
		Expect(utils.CheckInit(newRoot, "/sbin/init")).To(Succeed())
	})
	It("accepts a regular file", func() {
		Expect(os.WriteFile(filepath.Join(newRoot, "sbin", "init"), []byte{}, 0755)).To(Succeed())
		Expect(utils.CheckInit(newRoot, "/sbin/init")).To(Succeed())
	})
	It("fails when init is missing", func() {
		Expect(utils.CheckInit(newRoot, "/sbin/init")).ToNot(Succeed())
	})
})

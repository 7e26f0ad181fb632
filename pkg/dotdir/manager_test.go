package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Paths returned by Target are absolute; resolve /var -> /private/var on macOS.
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	chdir := func(dir string) {
		orig, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { _ = os.Chdir(orig) })
	}

	Describe("Target", func() {
		It("creates the override directory when missing", func() {
			dir := filepath.Join(tmpDir, "nested", "override")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("prefers the override over a local .chatspace dir", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, dotdir.DirName), 0o700)).To(Succeed())
			chdir(tmpDir)

			override := filepath.Join(tmpDir, "elsewhere")
			result, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(override))
		})

		It("uses the local .chatspace dir when present", func() {
			local := filepath.Join(tmpDir, dotdir.DirName)
			Expect(os.Mkdir(local, 0o700)).To(Succeed())
			chdir(tmpDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(local))
		})

		It("falls back to a .chatspace dir under HOME", func() {
			work := filepath.Join(tmpDir, "work")
			Expect(os.Mkdir(work, 0o700)).To(Succeed())
			chdir(work)

			home := filepath.Join(tmpDir, "home")
			Expect(os.Mkdir(home, 0o700)).To(Succeed())
			origHome := os.Getenv("HOME")
			Expect(os.Setenv("HOME", home)).To(Succeed())
			DeferCleanup(func() { _ = os.Setenv("HOME", origHome) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(home, dotdir.DirName)))
		})
	})

	Describe("File", func() {
		It("joins the file name onto the resolved directory", func() {
			path, err := m.File(tmpDir, "credentials.toml")
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
		})
	})
})

package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("flattens newlines and repeated spaces", func() {
		Expect(Truncate("# Title\n\n  body   text", 40)).To(Equal("# Title body text"))
	})

	It("never splits a multi-byte rune", func() {
		Expect(Truncate("héllo wörld", 4)).To(Equal("héll..."))
	})
})

var _ = Describe("UserAgent", func() {
	It("carries the build version", func() {
		Expect(UserAgent()).To(Equal("chatspace/" + Version))
	})
})

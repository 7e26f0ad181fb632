package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(42 * time.Millisecond)).To(Equal("42ms"))
		})

		It("uses seconds with one decimal otherwise", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("Mark", func() {
		It("distinguishes success from failure", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
			Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("returns the function's error and ends with the final line", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "Pushing to minima", func() error {
				time.Sleep(100 * time.Millisecond)
				return errors.New("boom")
			})
			Expect(err).To(MatchError("boom"))

			out := buf.String()
			Expect(out).To(HaveSuffix("\n"))
			last := out[strings.LastIndex(out, "\r"):]
			Expect(last).To(ContainSubstring(cliui.FailMark))
			Expect(last).To(ContainSubstring("Pushing to minima"))
		})
	})

	Describe("Indent", func() {
		It("pads non-empty lines only", func() {
			Expect(cliui.Indent("a\n\nb", 2)).To(Equal("  a\n\n  b"))
		})
	})

	Describe("RenderMarkdown", func() {
		It("keeps the text of the document", func() {
			out, err := cliui.RenderMarkdown("# Title\n\nsome *body* text")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Title"))
			Expect(out).To(ContainSubstring("body"))
		})
	})
})

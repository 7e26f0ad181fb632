package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/eventstream"
	"github.com/chatspace-app/chatspace/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	It("returns ErrNilEvent for nil events", func() {
		err := nop.NewPublisher().Publish(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilEvent))
	})

	It("succeeds for non-nil events", func() {
		err := nop.NewPublisher().Publish(context.Background(), &eventstream.PushEvent{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("closes successfully", func() {
		Expect(nop.NewPublisher().Close()).To(Succeed())
	})
})

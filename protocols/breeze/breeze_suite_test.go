package breeze_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBreeze(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Breeze Protocol Actors Suite")
}

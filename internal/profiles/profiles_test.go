package profiles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmlab/firmlab/internal/model"
)

func TestDefault_AllProfilesPresent(t *testing.T) {
	cat := Default()

	want := []string{"AN7581", "BCM6755", "IPQ9574", "MT7986", "RTL9607C", "S905X4"}
	all := cat.List("")
	require.Len(t, all, len(want))
	for i, p := range all {
		assert.Equal(t, want[i], p.ChipsetID)
		assert.NotEmpty(t, p.Vendor)
		assert.NotEmpty(t, p.BootSequence, "profile %s has no boot sequence", p.ChipsetID)
		for _, stage := range p.BootSequence {
			assert.NotEmpty(t, stage.Name)
			assert.Positive(t, stage.TimeoutMS)
		}
	}
}

func TestGet_CaseInsensitive(t *testing.T) {
	cat := Default()

	p, ok := cat.Get("ipq9574")
	require.True(t, ok)
	assert.Equal(t, "qualcomm", p.Vendor)
	assert.Equal(t, "ARM Cortex-A73", p.CPUType)
	assert.Equal(t, 2200, p.CPUFrequencyMHz)

	_, ok = cat.Get("IPQ0000")
	assert.False(t, ok)
}

func TestList_ByVendor(t *testing.T) {
	cat := Default()

	mtk := cat.List("MediaTek")
	require.Len(t, mtk, 1)
	assert.Equal(t, "MT7986", mtk[0].ChipsetID)

	assert.Empty(t, cat.List("nosuchvendor"))
}

func TestDetect(t *testing.T) {
	cat := Default()

	t.Run("exact soc", func(t *testing.T) {
		p, ok := cat.Detect(model.HardwareSpec{SoC: "mt7986"})
		require.True(t, ok)
		assert.Equal(t, "MT7986", p.ChipsetID)
	})

	t.Run("soc substring", func(t *testing.T) {
		p, ok := cat.Detect(model.HardwareSpec{SoC: "BCM6755-A0"})
		require.True(t, ok)
		assert.Equal(t, "BCM6755", p.ChipsetID)
	})

	t.Run("vendor fallback", func(t *testing.T) {
		p, ok := cat.Detect(model.HardwareSpec{SoC: "unknown", Vendor: "Realtek"})
		require.True(t, ok)
		assert.Equal(t, "RTL9607C", p.ChipsetID)
	})

	t.Run("nothing known", func(t *testing.T) {
		_, ok := cat.Detect(model.HardwareSpec{SoC: "unknown", Vendor: "unknown"})
		assert.False(t, ok)
	})
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(strings.NewReader("profiles: [not a map"))
	require.Error(t, err)
}

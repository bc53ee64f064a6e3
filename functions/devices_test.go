package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceCatalogue(t *testing.T) {
	assert.Equal(t, []string{"ac", "curtain", "fan", "light"}, DeviceTypes())
	assert.Len(t, ActionsFor("curtain"), 2)
	assert.Empty(t, ActionsFor("toaster"))

	assert.NoError(t, ValidateCommand("fan", "speed_up"))
	assert.Error(t, ValidateCommand("fan", "dim"))
	assert.Error(t, ValidateCommand("toaster", "on"))
}

func TestListDeviceActions(t *testing.T) {
	out := ListDeviceActions()
	assert.Equal(t, []string{"on", "off", "temp_up", "temp_down"}, out["ac"])
	assert.Equal(t, ListDeviceActionsName, ListDeviceActionsFunctionDeclaration().Name)
}

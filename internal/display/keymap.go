//go:build !headless

package display

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/junsooki/ArisLoop/internal/input"
)

var keyButtons = []struct {
	key ebiten.Key
	btn input.Buttons
}{
	{ebiten.KeyEnter, input.ButtonStart},
	{ebiten.KeyBackspace, input.ButtonSelect},
	{ebiten.KeyEscape, input.ButtonSelect},
	{ebiten.KeyX, input.ButtonA},
	{ebiten.KeyZ, input.ButtonB},
	{ebiten.KeyS, input.ButtonX},
	{ebiten.KeyA, input.ButtonY},
	{ebiten.KeyQ, input.ButtonL},
	{ebiten.KeyW, input.ButtonR},
	{ebiten.KeyArrowUp, input.ButtonUp},
	{ebiten.KeyArrowDown, input.ButtonDown},
	{ebiten.KeyArrowLeft, input.ButtonLeft},
	{ebiten.KeyArrowRight, input.ButtonRight},
}

var padButtons = []struct {
	pad ebiten.StandardGamepadButton
	btn input.Buttons
}{
	{ebiten.StandardGamepadButtonCenterRight, input.ButtonStart},
	{ebiten.StandardGamepadButtonCenterLeft, input.ButtonSelect},
	{ebiten.StandardGamepadButtonRightRight, input.ButtonA},
	{ebiten.StandardGamepadButtonRightBottom, input.ButtonB},
	{ebiten.StandardGamepadButtonRightTop, input.ButtonX},
	{ebiten.StandardGamepadButtonRightLeft, input.ButtonY},
	{ebiten.StandardGamepadButtonFrontTopLeft, input.ButtonL},
	{ebiten.StandardGamepadButtonFrontTopRight, input.ButtonR},
	{ebiten.StandardGamepadButtonLeftTop, input.ButtonUp},
	{ebiten.StandardGamepadButtonLeftBottom, input.ButtonDown},
	{ebiten.StandardGamepadButtonLeftLeft, input.ButtonLeft},
	{ebiten.StandardGamepadButtonLeftRight, input.ButtonRight},
}

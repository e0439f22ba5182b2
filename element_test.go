package jot

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElement_Placement(t *testing.T) {
	c, _ := newTestContainer(t, Options{CanvasSize: Size{W: 400, H: 300}})

	e, err := c.AddImage(solidImage(40, 20, color.White))
	require.NoError(t, err)
	assert.Equal(t, KindImage, e.Kind())
	assert.Equal(t, Size{W: 40, H: 20}, e.Bounds())
	assert.Equal(t, Pt(200, 150), e.Transform().Center())
	assert.Equal(t, 1.0, e.Transform().Scale)

	require.NoError(t, e.Place(2, Pt(50, 60)))
	tr := e.Transform()
	assert.Equal(t, 2.0, tr.Scale)
	assert.Equal(t, Pt(50, 60), tr.Center())

	require.NoError(t, e.ResizeWithScale(100))
	assert.Equal(t, DefaultScaleLimits.Max, e.Transform().Scale)
	assert.ErrorIs(t, e.ResizeWithScale(0), ErrInvalidScaleFactor)

	require.NoError(t, e.ResizeTo(Size{W: 10, H: 10}))
	assert.Equal(t, Size{W: 10, H: 10}, e.Bounds())
	assert.ErrorIs(t, e.ResizeTo(Size{W: -1, H: 10}), ErrInvalidSize)
}

func TestElement_UnboundedCanvasCentersOnContent(t *testing.T) {
	c, _ := newTestContainer(t, Options{})

	e, err := c.AddText("hello", TextStyle{})
	require.NoError(t, err)
	assert.Equal(t, Pt(25, 10), e.Transform().Center())
	assert.Equal(t, DefaultTextStyle, e.Content().Style)
}

func TestElement_Editing(t *testing.T) {
	var events []bool
	c, _ := newTestContainer(t, Options{
		Observer: Observer{
			EditingTextChanged: func(id ElementID, text string, editing bool) {
				events = append(events, editing)
			},
		},
	})

	img := addImageAt(t, c, 10, 10, 0, 0)
	assert.ErrorIs(t, img.EnableEditing(true), ErrUnsupportedOperation)
	assert.NoError(t, img.EnableEditing(false))
	assert.ErrorIs(t, img.SetText("x"), ErrUnsupportedOperation)

	a, err := c.AddText("a", TextStyle{})
	require.NoError(t, err)
	b, err := c.AddText("b", TextStyle{})
	require.NoError(t, err)

	require.NoError(t, a.EnableEditing(true))
	require.NoError(t, b.EnableEditing(true))
	assert.False(t, a.IsEditing())
	assert.True(t, b.IsEditing())
	assert.Equal(t, b, c.Editing())

	require.NoError(t, b.SetText("longer"))
	assert.Equal(t, "longer", b.Text())
	assert.Equal(t, Size{W: 60, H: 20}, b.Bounds())

	require.NoError(t, b.EnableEditing(false))
	assert.Nil(t, c.Editing())

	// a on, a off, b on, b text, b off
	assert.Equal(t, []bool{true, false, true, true, false}, events)
}

func TestElement_SingleSelection(t *testing.T) {
	c, _ := newTestContainer(t, Options{})
	a := addImageAt(t, c, 10, 10, 0, 0)
	b := addImageAt(t, c, 10, 10, 50, 50)

	require.NoError(t, a.SetSelected(true))
	require.NoError(t, b.SetSelected(true))
	assert.False(t, a.IsSelected())
	assert.True(t, b.IsSelected())

	require.NoError(t, a.SetSelected(false))
	assert.Equal(t, b, c.Selected())
	require.NoError(t, b.SetSelected(false))
	assert.Nil(t, c.Selected())
}

func TestElement_CaptureUndoSnapshot(t *testing.T) {
	captured := 0
	c, _ := newTestContainer(t, Options{
		Observer: Observer{UndoSnapshotCaptured: func(ElementID) { captured++ }},
	})
	e := addImageAt(t, c, 10, 10, 0, 0)

	_, ok := e.LastUndoSnapshot()
	assert.False(t, ok)

	// Outside of a gesture every capture is recorded.
	for i := 0; i < 2; i++ {
		ok, err := e.CaptureUndoSnapshot()
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 2, captured)

	s, ok := e.LastUndoSnapshot()
	assert.True(t, ok)
	assert.Equal(t, e.ID(), s.ElementID)

	// Inside a gesture the session already holds its snapshot.
	require.NoError(t, c.HandleGesture(gesture(GesturePan, PhaseBegan, Pt(0, 0))))
	assert.Equal(t, 3, captured)
	ok, err := e.CaptureUndoSnapshot()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, captured)
}

func TestElement_DetachedRejectsMutations(t *testing.T) {
	c, _ := newTestContainer(t, Options{})
	e, err := c.AddText("gone", TextStyle{})
	require.NoError(t, err)
	require.NoError(t, c.Remove(e.ID()))

	assert.Equal(t, -1, e.ZOrder())
	assert.ErrorIs(t, e.SetSelected(true), ErrElementNotFound)
	assert.ErrorIs(t, e.MoveCenterTo(Pt(1, 1)), ErrElementNotFound)
	assert.ErrorIs(t, e.EnableEditing(true), ErrElementNotFound)
	assert.ErrorIs(t, e.SetText("x"), ErrElementNotFound)
	_, err = e.CaptureUndoSnapshot()
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.ErrorIs(t, e.ApplyUndo(UndoSnapshot{ElementID: e.ID()}), ErrElementNotFound)
}

func TestElement_ApplyUndoOfOtherElement(t *testing.T) {
	c, _ := newTestContainer(t, Options{})
	e := addImageAt(t, c, 10, 10, 0, 0)
	assert.ErrorIs(t, e.ApplyUndo(UndoSnapshot{ElementID: "other"}), ErrElementNotFound)
}

func TestElement_RejectsNonFinitePlacement(t *testing.T) {
	c, _ := newTestContainer(t, Options{})
	e := addImageAt(t, c, 20, 20, 50, 50)
	before := e.Transform()

	assert.ErrorIs(t, e.MoveCenterTo(Pt(math.NaN(), 0)), ErrInvalidTransform)
	assert.ErrorIs(t, e.MoveCenterTo(Pt(0, math.Inf(1))), ErrInvalidTransform)
	assert.ErrorIs(t, e.Place(2, Pt(math.NaN(), math.NaN())), ErrInvalidTransform)

	bad := before
	bad.Rotation = math.Inf(1)
	assert.ErrorIs(t, e.SetTransform(bad), ErrInvalidTransform)
	bad = before
	bad.Scale = math.NaN()
	assert.ErrorIs(t, e.SetTransform(bad), ErrInvalidScaleFactor)

	assert.Equal(t, before, e.Transform())
}

func TestElement_SetStyle(t *testing.T) {
	var texts []string
	c, _ := newTestContainer(t, Options{Backend: newRaster(t)})
	c.SetObserver(Observer{
		EditingTextChanged: func(id ElementID, text string, editing bool) {
			texts = append(texts, text)
		},
	})
	e, err := c.AddText("jot", TextStyle{Color: color.NRGBA{A: 255}, FontSize: 20})
	require.NoError(t, err)
	small := e.Bounds()

	red := color.NRGBA{R: 255, A: 255}
	require.NoError(t, e.SetTextColor(red))
	assert.Equal(t, red, e.Content().Style.Color)
	assert.Equal(t, small, e.Bounds())

	require.NoError(t, e.EnableEditing(true))
	require.NoError(t, e.SetStyle(TextStyle{Color: red, FontSize: 40}))
	assert.Greater(t, e.Bounds().W, small.W)
	assert.Greater(t, e.Bounds().H, small.H)
	assert.Equal(t, []string{"jot", "jot"}, texts)

	assert.ErrorIs(t, e.SetStyle(TextStyle{FontSize: 0}), ErrInvalidSize)
	assert.ErrorIs(t, e.SetStyle(TextStyle{FontSize: 10, Shadow: -1}), ErrInvalidSize)
	assert.Equal(t, 40.0, e.Content().Style.FontSize)

	img := addImageAt(t, c, 10, 10, 0, 0)
	assert.ErrorIs(t, img.SetTextColor(red), ErrUnsupportedOperation)

	require.NoError(t, c.Remove(e.ID()))
	assert.ErrorIs(t, e.SetStyle(DefaultTextStyle), ErrElementNotFound)
}

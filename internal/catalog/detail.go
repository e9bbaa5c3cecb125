package catalog

// Keys understood by Detail.HandleKey.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// ScrollLocker suspends background scrolling. Lock returns the function
// that restores the previous scroll state.
type ScrollLocker interface {
	Lock() (restore func())
}

// Detail is the state behind the project modal: the selected project,
// the image being shown, and the scroll lock held while it is open.
type Detail struct {
	locker  ScrollLocker
	restore func()
	project *Project
	index   int
}

// NewDetail creates a closed detail view. A nil locker disables scroll
// locking.
func NewDetail(locker ScrollLocker) *Detail {
	return &Detail{locker: locker}
}

// Open shows p starting at its first image. Opening while another project
// is shown releases the previous lock first.
func (d *Detail) Open(p Project) {
	d.release()
	p = p.clone()
	d.project = &p
	d.index = 0
	if d.locker != nil {
		d.restore = d.locker.Lock()
	}
}

// Close hides the view and restores scrolling.
func (d *Detail) Close() {
	d.release()
	d.project = nil
	d.index = 0
}

// Unmount tears the view down. It is safe to call on a closed view.
func (d *Detail) Unmount() {
	d.Close()
}

// IsOpen reports whether a project is shown.
func (d *Detail) IsOpen() bool {
	return d.project != nil
}

// Project returns the shown project.
func (d *Detail) Project() (Project, bool) {
	if d.project == nil {
		return Project{}, false
	}
	return *d.project, true
}

// ImageIndex is the index of the current image.
func (d *Detail) ImageIndex() int {
	return d.index
}

// CurrentImage returns the URL of the current image, if any.
func (d *Detail) CurrentImage() (string, bool) {
	if d.imageCount() == 0 {
		return "", false
	}
	return d.project.Images[d.index], true
}

// HasImageNav reports whether image navigation controls apply.
func (d *Detail) HasImageNav() bool {
	return d.imageCount() > 0
}

// Next advances to the next image, wrapping to the first.
func (d *Detail) Next() {
	if n := d.imageCount(); n > 0 {
		d.index = (d.index + 1) % n
	}
}

// Prev moves to the previous image, wrapping to the last.
func (d *Detail) Prev() {
	if n := d.imageCount(); n > 0 {
		d.index = (d.index - 1 + n) % n
	}
}

// SetImage jumps to image i, clamped into range.
func (d *Detail) SetImage(i int) {
	d.index = clampIndex(i, d.imageCount())
}

// PrevIndex and NextIndex are the indices Prev and Next would select.
func (d *Detail) PrevIndex() int {
	if n := d.imageCount(); n > 0 {
		return (d.index - 1 + n) % n
	}
	return 0
}

func (d *Detail) NextIndex() int {
	if n := d.imageCount(); n > 0 {
		return (d.index + 1) % n
	}
	return 0
}

// HandleKey applies a keyboard event and reports whether it was consumed.
// Keys are ignored while the view is closed.
func (d *Detail) HandleKey(key string) bool {
	if !d.IsOpen() {
		return false
	}
	switch key {
	case KeyEscape:
		d.Close()
		return true
	case KeyArrowLeft:
		if !d.HasImageNav() {
			return false
		}
		d.Prev()
		return true
	case KeyArrowRight:
		if !d.HasImageNav() {
			return false
		}
		d.Next()
		return true
	}
	return false
}

func (d *Detail) imageCount() int {
	if d.project == nil {
		return 0
	}
	return len(d.project.Images)
}

func (d *Detail) release() {
	if d.restore != nil {
		restore := d.restore
		d.restore = nil
		restore()
	}
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW = 87 // W key (ASCII) - move forward / zoom in
	KeyA = 65 // A key (ASCII) - strafe left
	KeyS = 83 // S key (ASCII) - move backward / zoom out
	KeyD = 68 // D key (ASCII) - strafe right
	KeyQ = 81 // Q key (ASCII) - move down
	KeyE = 69 // E key (ASCII) - move up
	KeyM = 77 // M key (ASCII) - floor plan toggle
	KeyT = 84 // T key (ASCII) - guided tour toggle

	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)

	KeyUp    = 265 // Up arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyRight = 262 // Right arrow (GLFW)

	Key1 = 49 // 1 key (ASCII) - preset selection
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
)

package camera

// NavigatorBuilderOption is a functional option applied to a navigator during construction via NewNavigator.
type NavigatorBuilderOption func(*navigatorImpl)

// WithNavigationMode sets the initial navigation mode.
//
// Parameters:
//   - m: the navigation mode
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the mode
func WithNavigationMode(m NavigationMode) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.mode = m
	}
}

// WithOrbitSensitivity sets the orbit rotation per pixel of drag.
//
// Parameters:
//   - radiansPerPixel: rotation angle per pixel
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the orbit sensitivity
func WithOrbitSensitivity(radiansPerPixel float32) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		n.orbitSensitivity = radiansPerPixel
	}
}

// WithZoomFactor sets the distance scale applied per zoom step. Must be in (0, 1).
//
// Parameters:
//   - factor: the scale per step
//
// Returns:
//   - NavigatorBuilderOption: a function that sets the zoom factor
func WithZoomFactor(factor float32) NavigatorBuilderOption {
	return func(n *navigatorImpl) {
		if factor > 0 && factor < 1 {
			n.zoomFactor = factor
		}
	}
}

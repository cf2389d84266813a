package smooth

// roundingSlack is the relative tolerance applied before rounding frame
// counts up, so 0.01s * 48000 yields 480 frames and not 481.
const roundingSlack = 1e-9

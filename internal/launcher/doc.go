// Package launcher locates Prism Launcher installations and reads the
// launcher metadata needed to scan an instance: the instance list, the
// Minecraft version pinned by mmc-pack.json, and the vanilla client jar
// and asset index shipped with that version.
package launcher

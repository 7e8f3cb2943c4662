package renmod

// User-facing strings for the command surface, kept in one place.
const (
	MsgRootShort = "Install mods into packaged Ren'Py games"
	MsgRootLong  = `renmod installs user-supplied mods into a packaged Ren'Py game,
resolving file conflicts between multiple mods deterministically and reading
the game's RPA archives.

Mods are installed in the order given; the position is the mod's priority
and decides which mod wins when conflicting files are renamed.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"

	MsgRpaShort     = "Inspect and extract RPA archives"
	MsgListShort    = "List the files stored in an archive"
	MsgInfoShort    = "Show summary information about an archive"
	MsgExtractShort = "Extract an archive to a directory"
	MsgDetectShort  = "Locate the Ren'Py game folder in an extracted tree"
	MsgInstallShort = "Install one or more mods into a game directory"
	MsgInstallLong  = `Install one or more mods into a game content directory.

Each mod is scanned against the game directory's current state; conflicting
files are handled by the chosen strategy:

  new-file  rename to {prefix}{priority}_{name} so the mod shadows the
            original via Ren'Py's script load order (default, recommended)
  replace   overwrite the original file in place
  skip      keep the original file, drop the mod's copy

Conflicts are always computed against the game tree as it was before the
run started, never against another mod's pending output.`
)

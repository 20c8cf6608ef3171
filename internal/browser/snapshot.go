package browser

// jsSnapshotSource serializes the page's global state in the page
// itself. The walk is bounded three ways: depth 5, a two second wall
// clock, and a self-reference check against window. Named functions
// become {name: ""} markers so matchers can still probe for them, and
// any subtree that throws is replaced by a placeholder instead of
// failing the whole snapshot.
const jsSnapshotSource = `(() => {
  const dereference = (obj, level, start) => {
    if (Date.now() - start >= 2000) {
      return '[Removed]';
    }
    try {
      if (level > 5 || (level && obj === window)) {
        return '[Removed]';
      }
      if (Array.isArray(obj)) {
        obj = obj.map((item) => dereference(item, level + 1, start));
      }
      if (obj === null) {
        return null;
      }
      if (typeof obj === 'object') {
        const out = {};
        Object.keys(obj).forEach((key) => {
          out[key] = dereference(obj[key], level + 1, start);
        });
        return out;
      }
      if (typeof obj === 'function' && obj.name) {
        return { [obj.name]: '' };
      }
      return obj;
    } catch (e) {
      return undefined;
    }
  };
  try {
    return JSON.stringify(dereference(window, 0, Date.now())) || '';
  } catch (e) {
    return '';
  }
})()`

// jsSnapshotFallbackSource is the flat fallback used when the recursive
// walk produced nothing. It serializes window with a cycle-dropping
// replacer instead of walking it.
const jsSnapshotFallbackSource = `(() => {
  const seen = new Set();
  try {
    return JSON.stringify(window, (key, value) => {
      if (value === null) {
        return null;
      }
      if (typeof value === 'object') {
        if (seen.has(value)) {
          try {
            return JSON.parse(JSON.stringify(value));
          } catch (e) {
            return '[Removed]';
          }
        }
        seen.add(value);
      }
      if (typeof value === 'function' && value.name) {
        return { [value.name]: '' };
      }
      return value;
    }) || '';
  } catch (e) {
    return '';
  }
})()`

// jsLinksSource collects every anchor's href and rel.
const jsLinksSource = `Array.from(document.getElementsByTagName('a')).map((a) => ({
  href: a.href,
  rel: a.rel,
}))`

// jsFormLinksSource derives links from form targets: a crawlable GET
// form is treated as a link to its action URL.
const jsFormLinksSource = `Array.from(document.getElementsByTagName('form'))
  .filter((f) => f.action && (!f.method || f.method.toLowerCase() === 'get'))
  .map((f) => ({ href: f.action, rel: '' }))`

// jsScriptsSource collects external script sources.
const jsScriptsSource = `Array.from(document.getElementsByTagName('script'))
  .map((s) => s.src)
  .filter((src) => src)`
